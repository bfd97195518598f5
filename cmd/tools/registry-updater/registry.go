// cmd/tools/registry-updater/registry.go
package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"deal-hunter/pkg/registry"
)

const defaultRegistryPath = "configs/trust-registry.json"

// load returns the registry at path, seeded with the built-in keywords when
// the file does not exist yet.
func load(path string) (*registry.TrustRegistry, error) {
	reg, err := registry.LoadRegistry(path)
	if os.IsNotExist(err) {
		return registry.Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}
	return reg, nil
}

func addMarketplace(path, keyword, displayName string) error {
	reg, err := load(path)
	if err != nil {
		return err
	}
	if err := reg.Add(keyword, displayName); err != nil {
		return err
	}
	return registry.SaveRegistry(reg, path)
}

// removeMarketplace refuses to leave an empty registry behind.
func removeMarketplace(path, keyword string) error {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Remove(keyword); err != nil {
		return err
	}
	if err := reg.Validate(); err != nil {
		return fmt.Errorf("refusing to save: %w", err)
	}
	return registry.SaveRegistry(reg, path)
}

func listMarketplaces(out io.Writer, path string) error {
	reg, err := load(path)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KEYWORD\tDISPLAY NAME\tADDED")
	for _, m := range reg.Marketplaces {
		fmt.Fprintf(w, "%s\t%s\t%s\n", m.Keyword, m.DisplayName, m.AddedAt)
	}
	return w.Flush()
}

func validateRegistry(path string) (int, error) {
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return 0, fmt.Errorf("failed to load registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return 0, err
	}
	return len(reg.Marketplaces), nil
}
