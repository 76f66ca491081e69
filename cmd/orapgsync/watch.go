package main

import (
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sayiza/orapgsync/translate"
)

var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Re-translate files as they change",
	Long:  "Watches dir (default .) for writes to .sql files and retranslates each one as it changes, keeping one session alive across the whole run so cross-file package state survives edits.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		idx, err := loadCatalog()
		if err != nil {
			return err
		}
		log := logrus.StandardLogger()
		sess := translate.NewSession(idx, log.WithField("correlation_id", uuid.NewString()))

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return fmt.Errorf("starting watcher: %w", err)
		}
		defer watcher.Close()
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %q: %w", dir, err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "watching %s for .sql changes (ctrl-c to stop)\n", dir)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if filepath.Ext(event.Name) != ".sql" {
					continue
				}
				if err := translateOne(sess, event.Name); err != nil {
					log.WithField("file", event.Name).Warn(err)
				} else {
					log.WithField("file", event.Name).Info("retranslated")
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				log.Warn(err)
			case <-cmd.Context().Done():
				return nil
			}
		}
	},
}
