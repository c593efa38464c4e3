package cfg

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"tubarchive/internal/file"
	"tubarchive/internal/parsing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// loadConfigFile reads a config file into viper and applies it to unset flags.
func loadConfigFile(cmd *cobra.Command, configFile string) error {
	if err := file.LoadConfigFile(viper.GetViper(), configFile); err != nil {
		return err
	}
	return applyConfigDefaults(cmd.Flags())
}

// applyConfigDefaults sets every flag the user did not pass from the loaded config values.
func applyConfigDefaults(fs *pflag.FlagSet) error {
	var errOrNil error
	fs.VisitAll(func(f *pflag.Flag) {
		if f.Changed || errOrNil != nil {
			return
		}
		key := f.Name
		var err error
		switch f.Value.Type() {
		case "string":
			if val, ok := parsing.GetConfigValue[string](key); ok {
				err = f.Value.Set(val)
			}
		case "int":
			if val, ok := parsing.GetConfigValue[int](key); ok {
				err = f.Value.Set(strconv.Itoa(val))
			}
		case "bool":
			if val, ok := parsing.GetConfigValue[bool](key); ok {
				err = f.Value.Set(strconv.FormatBool(val))
			}
		case "duration":
			if val, ok := parsing.GetConfigValue[string](key); ok {
				var d time.Duration
				if d, err = parsing.SettingDuration(val); err == nil {
					err = f.Value.Set(d.String())
				}
			}
		case "stringSlice":
			if slice, ok := parsing.GetConfigValue[[]string](key); ok && len(slice) > 0 {
				if sv, ok := f.Value.(pflag.SliceValue); ok {
					err = sv.Replace(slice)
				} else {
					err = f.Value.Set(strings.Join(slice, ","))
				}
			}
		}
		if err != nil {
			errOrNil = fmt.Errorf("config value for %q: %w", key, err)
		}
	})
	return errOrNil
}
