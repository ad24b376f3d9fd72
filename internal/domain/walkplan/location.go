package walkplan

import (
	"context"
	"fmt"
	"strings"

	apperrors "github.com/yanqian/walkcast/pkg/errors"
)

const (
	msgEmptyCity           = "Please enter a city name."
	msgGeocodingFailed     = "There was an error retrieving the coordinates."
	msgLocationUnavailable = "Your location could not be determined."
)

// locationInput is the checked location part of a request, produced before any
// network call is made.
type locationInput struct {
	manual bool
	city   string
	device *Location
}

func (s *service) checkLocationInput(req PlanRequest) (locationInput, error) {
	if req.ManualLocation {
		city := strings.TrimSpace(req.City)
		if city == "" {
			return locationInput{}, apperrors.Wrap(apperrors.CodeInvalidInput, msgEmptyCity, nil)
		}
		return locationInput{manual: true, city: city}, nil
	}

	switch {
	case req.Latitude != nil && req.Longitude != nil:
		loc := Location{Latitude: *req.Latitude, Longitude: *req.Longitude}
		if err := validateCoordinates(loc); err != nil {
			return locationInput{}, err
		}
		return locationInput{device: &loc}, nil
	case req.Latitude != nil || req.Longitude != nil:
		return locationInput{}, apperrors.Wrap(apperrors.CodeInvalidInput, "latitude and longitude must be sent together", nil)
	case s.locator == nil:
		return locationInput{}, apperrors.Wrap(apperrors.CodeLocationUnavailable, msgLocationUnavailable, nil)
	}
	return locationInput{}, nil
}

// resolveLocation turns checked input into coordinates. Manual mode performs
// a single geocoding lookup; automatic mode uses the device coordinates from
// the request or asks the device locator once.
func (s *service) resolveLocation(ctx context.Context, in locationInput) (Location, *Place, error) {
	if in.manual {
		places, err := s.geocoder.Search(ctx, in.city)
		if err != nil {
			s.logger.Error("geocoding lookup failed", "city", in.city, "error", err)
			return Location{}, nil, apperrors.Wrap(apperrors.CodeGeocodingError, msgGeocodingFailed, err)
		}
		if len(places) == 0 {
			return Location{}, nil, apperrors.Wrap(apperrors.CodeLocationNotFound,
				fmt.Sprintf("No coordinates found for the city %q.", in.city), nil)
		}
		place := places[0]
		return place.Location, &place, nil
	}

	if in.device != nil {
		return *in.device, nil, nil
	}
	loc, err := s.locator.Locate(ctx)
	if err != nil {
		s.logger.Warn("device location failed", "error", err)
		return Location{}, nil, apperrors.Wrap(apperrors.CodeLocationUnavailable, msgLocationUnavailable, err)
	}
	if err := validateCoordinates(loc); err != nil {
		return Location{}, nil, apperrors.Wrap(apperrors.CodeLocationUnavailable, msgLocationUnavailable, err)
	}
	return loc, nil, nil
}

func validateCoordinates(loc Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "latitude must be between -90 and 90", nil)
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "longitude must be between -180 and 180", nil)
	}
	return nil
}
