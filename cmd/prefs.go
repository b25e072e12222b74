package cmd

import (
	"errors"
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/tblx/pkg/logger"
	"github.com/oakwood-commons/tblx/pkg/settings"
	"github.com/oakwood-commons/tblx/pkg/store"
	"github.com/oakwood-commons/tblx/pkg/table"
)

var errNoStorageKey = errors.New("--storage-key is required")

// storedPrefs is what prefs show prints.
type storedPrefs struct {
	StorageKey string          `yaml:"storageKey"`
	Store      string          `yaml:"store"`
	Visibility map[string]bool `yaml:"visibility,omitempty"`
	Order      []string        `yaml:"order,omitempty"`
}

func newPrefsCmd() *cobra.Command {
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect or clear remembered column preferences",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the visibility and order stored under --storage-key as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, st, err := openPrefsStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			out := storedPrefs{StorageKey: run.StorageKey, Store: run.StoreURI}
			found, err := readPref(st, table.VisibilityKey(run.StorageKey), &out.Visibility)
			if err != nil {
				return err
			}
			foundOrder, err := readPref(st, table.OrderKey(run.StorageKey), &out.Order)
			if err != nil {
				return err
			}
			if !found && !foundOrder {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "no preferences stored for %q\n", run.StorageKey)
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(out); err != nil {
				return err
			}
			return enc.Close()
		},
	}

	resetCmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove the visibility and order stored under --storage-key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			run, st, err := openPrefsStore(cmd)
			if err != nil {
				return err
			}
			defer st.Close()

			for _, key := range []string{table.VisibilityKey(run.StorageKey), table.OrderKey(run.StorageKey)} {
				if err := st.Remove(key); err != nil {
					return fmt.Errorf("remove %s: %w", key, err)
				}
			}
			logger.FromContext(cmd.Context()).V(1).Info("preferences removed")
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "removed preferences for %q\n", run.StorageKey)
			return err
		},
	}

	prefsCmd.AddCommand(showCmd, resetCmd)
	return prefsCmd
}

func openPrefsStore(cmd *cobra.Command) (*settings.Run, store.Store, error) {
	run := settings.RunOrDefault(cmd.Context())
	if run.StorageKey == "" {
		return nil, nil, errNoStorageKey
	}
	st, err := store.Open(run.StoreURI)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	return run, st, nil
}

// readPref decodes the JSON stored at key into v. It reports false when the
// key is absent.
func readPref(st store.Store, key string, v any) (bool, error) {
	raw, ok, err := st.Read(key)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", key, err)
	}
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}
