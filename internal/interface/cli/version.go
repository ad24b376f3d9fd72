package cli

import (
	"fmt"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

const (
	devVersion         = "dev"
	goDevelMainVersion = "(devel)"
	vcsRevisionKey     = "vcs.revision"
	vcsModifiedKey     = "vcs.modified"
)

var readBuildInfo = debug.ReadBuildInfo

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the walkcast version.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), version)
			return err
		},
	}
}

// resolvedVersion prefers an injected release version, then module or VCS
// build info, then "dev".
func resolvedVersion(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed != "" && trimmed != devVersion {
		return trimmed
	}

	if info, ok := readBuildInfo(); ok && info != nil {
		if v := strings.TrimSpace(info.Main.Version); v != "" && v != goDevelMainVersion {
			return v
		}
		var revision string
		dirty := false
		for _, setting := range info.Settings {
			switch setting.Key {
			case vcsRevisionKey:
				revision = strings.TrimSpace(setting.Value)
			case vcsModifiedKey:
				dirty = strings.EqualFold(strings.TrimSpace(setting.Value), "true")
			}
		}
		if len(revision) > 12 {
			revision = revision[:12]
		}
		if revision != "" && dirty {
			return revision + "-dirty"
		}
		if revision != "" {
			return revision
		}
	}

	return devVersion
}
