package version

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/rxtech-lab/ndx-rsi/pkg/errors"
)

// CheckConfigVersion checks that a configuration file written for configVersion
// can be read by a binary at binaryVersion.
//
// Rules:
//   - "main" on either side skips the check
//   - major versions must match
//   - the config may not be newer than the binary within that major
//
// Examples:
//   - binary 1.2.0, config 1.0.0 -> OK
//   - binary 1.2.0, config 1.3.0 -> ERROR (config newer)
//   - binary 2.0.0, config 1.4.0 -> ERROR (major differs)
func CheckConfigVersion(binaryVersion, configVersion string) error {
	binaryVersion = strings.TrimPrefix(binaryVersion, "v")
	configVersion = strings.TrimPrefix(configVersion, "v")

	if binaryVersion == "main" || configVersion == "main" {
		return nil
	}

	binary, err := semver.NewVersion(binaryVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid binary version '%s'", binaryVersion)
	}

	config, err := semver.NewVersion(configVersion)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeInvalidVersion, err, "invalid config version '%s'", configVersion)
	}

	constraint, err := semver.NewConstraint(fmt.Sprintf("^%d.0.0, <= %s", binary.Major(), binary.String()))
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidVersion, "failed to build version constraint", err)
	}

	if !constraint.Check(config) {
		return errors.Newf(errors.ErrCodeInvalidVersion,
			"config version %s is not supported by ndx-rsi %s (requires ^%d.0.0, <= %s)",
			config, binary, binary.Major(), binary)
	}

	return nil
}
