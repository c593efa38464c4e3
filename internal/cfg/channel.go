package cfg

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"tubarchive/internal/contracts"
	"tubarchive/internal/domain/consts"
	"tubarchive/internal/file"
	"tubarchive/internal/models"
	"tubarchive/internal/repo"
	"tubarchive/internal/validation"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// initChannelCmds is the entrypoint for initializing channel commands.
func initChannelCmds(s contracts.Store) *cobra.Command {
	channelCmd := &cobra.Command{
		Use:   "channel",
		Short: "Channel commands",
		Long:  "Manage registered channels with subcommands like add, delete, list and import.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errors.New("please specify a subcommand. Use --help to see available subcommands")
		},
	}

	cs := s.ChannelStore()
	channelCmd.AddCommand(addChannelCmd(cs))
	channelCmd.AddCommand(deleteChannelCmd(cs))
	channelCmd.AddCommand(listChannelCmd(cs, s.VideoStore()))
	channelCmd.AddCommand(importChannelCmd(cs))
	channelCmd.AddCommand(pauseChannelCmd(cs, true))
	channelCmd.AddCommand(pauseChannelCmd(cs, false))
	return channelCmd
}

// addChannelCmd registers a new channel.
func addChannelCmd(cs contracts.ChannelStore) *cobra.Command {
	var (
		id, name, category string
		depth              int
		noConvert          bool
	)

	addCmd := &cobra.Command{
		Use:   "add",
		Short: "Add a channel",
		Long:  "Add registers a channel by its ID (UC...) or @handle. Name and upload playlist are filled in on the first check when omitted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if id == "" && len(args) == 1 {
				id = args[0]
			}
			c := &models.Channel{
				ChannelID: id,
				Name:      name,
				Category:  category,
				Depth:     validation.ValidateDepth(depth),
				Convert:   !noConvert,
			}
			if _, err := cs.AddChannel(c); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added channel %s (%s)\n", c.DisplayName(), c.ChannelID)
			return nil
		},
	}

	addCmd.Flags().StringVarP(&id, "id", "i", "", "Channel ID or @handle")
	addCmd.Flags().StringVarP(&name, "name", "n", "", "Channel display name")
	addCmd.Flags().StringVarP(&category, "category", "c", "", "Category directory ("+consts.DefaultCategory+" if empty)")
	addCmd.Flags().IntVar(&depth, "depth", 0, "Newest uploads to check on each pass (0 for all)")
	addCmd.Flags().BoolVar(&noConvert, "no-convert", false, "Keep separate video and audio streams")
	return addCmd
}

// deleteChannelCmd deletes a channel and its video rows.
func deleteChannelCmd(cs contracts.ChannelStore) *cobra.Command {
	var id, name string

	delCmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a channel",
		Long:  "Delete removes a channel and its video records from the registry. Files on disk are kept.",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, val := consts.QChanChannelID, id
			switch {
			case id != "" && name != "":
				return errors.New("enter either a channel ID or a name, not both")
			case name != "":
				key, val = consts.QChanName, name
			case id == "":
				return errors.New("must enter a channel ID or name")
			}

			if err := cs.DeleteChannel(key, val); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted channel with %s %q\n", key, val)
			return nil
		},
	}

	delCmd.Flags().StringVarP(&id, "id", "i", "", "Channel ID")
	delCmd.Flags().StringVarP(&name, "name", "n", "", "Channel name")
	return delCmd
}

// listChannelCmd lists registered channels.
func listChannelCmd(cs contracts.ChannelStore, vs contracts.VideoStore) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List channels",
		Long:  "Lists every registered channel with its settings, archived video count and last check.",
		RunE: func(cmd *cobra.Command, args []string) error {
			channels, hasRows, err := cs.GetAllChannels()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !hasRows {
				fmt.Fprintln(out, "No channels registered")
				return nil
			}

			for _, c := range channels {
				videos, err := vs.GetChannelVideos(c.ChannelID)
				if err != nil {
					return err
				}
				downloaded := 0
				for _, v := range videos {
					if v.Downloaded {
						downloaded++
					}
				}

				lastScan := "never"
				if !c.LastScan.IsZero() {
					lastScan = humanize.Time(c.LastScan)
				}
				category := c.Category
				if category == "" {
					category = consts.DefaultCategory
				}

				var flags []string
				if c.Paused {
					flags = append(flags, "paused")
				}
				if !c.Convert {
					flags = append(flags, "no-convert")
				}
				if c.Depth > 0 {
					flags = append(flags, "depth "+humanize.Comma(int64(c.Depth)))
				}

				fmt.Fprintf(out, "%s  %s [%s] %s/%s archived, checked %s %s\n",
					c.ChannelID,
					c.DisplayName(),
					category,
					humanize.Comma(int64(downloaded)),
					humanize.Comma(int64(len(videos))),
					lastScan,
					strings.Join(flags, ", "))
			}
			return nil
		},
	}
}

// importChannelCmd registers channels from a JSON channel tree.
func importChannelCmd(cs contracts.ChannelStore) *cobra.Command {
	var (
		category string
		depth    int
	)

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import channels from a JSON file",
		Long: "Import registers every channel in a JSON file mapping names to channel IDs.\n" +
			"Nested objects are categories, e.g. {\"News\": {\"Example\": \"UC...\"}}.\n" +
			"Any other file is read as one channel ID per line, with '#' comments.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			template := models.Channel{
				Category: category,
				Depth:    validation.ValidateDepth(depth),
				Convert:  true,
			}
			channels, parseErr := readChannelFile(args[0], template)
			if parseErr != nil && len(channels) == 0 {
				return parseErr
			}

			added, err := cs.ImportChannels(channels)
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s of %s channels\n",
				humanize.Comma(int64(added)), humanize.Comma(int64(len(channels))))
			return errors.Join(parseErr, err)
		},
	}

	importCmd.Flags().StringVarP(&category, "category", "c", "", "Parent category for every imported channel")
	importCmd.Flags().IntVar(&depth, "depth", 0, "Newest uploads to check on each pass (0 for all)")
	return importCmd
}

// readChannelFile parses a JSON channel tree, or a plain list of channel IDs.
func readChannelFile(path string, template models.Channel) ([]*models.Channel, error) {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return repo.ChannelsFromTree(data, template)
	}

	lines, err := file.ReadFileLines(path)
	if err != nil {
		return nil, err
	}
	var (
		out  = make([]*models.Channel, 0, len(lines))
		errs []error
	)
	for _, line := range lines {
		id, err := validation.ValidateChannelID(line)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		c := template
		c.ChannelID = id
		out = append(out, &c)
	}
	return out, errors.Join(errs...)
}

// pauseChannelCmd pauses or resumes a channel.
func pauseChannelCmd(cs contracts.ChannelStore, pause bool) *cobra.Command {
	use, short := "resume ID", "Resume checks of a paused channel"
	if pause {
		use, short = "pause ID", "Exclude a channel from passes over every channel"
	}

	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return cs.UpdateChannelValue(consts.QChanChannelID, args[0], consts.QChanPaused, pause)
		},
	}
}
