package surface

import "fmt"

// Extension contributes engine options at init time. Extensions are merged
// additively: maps merge key-by-key, and two extensions supplying different
// values for the same primitive key is a registration error, not a silent
// last-wins.
type Extension struct {
	Name    string
	Options map[string]any
}

// RegisterExtension adds an extension. Must be called before Start.
func (a *Adapter) RegisterExtension(ext Extension) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return fmt.Errorf("surface: extension %q registered after start", ext.Name)
	}
	if err := deepMerge(a.engineOptions, ext.Options); err != nil {
		return fmt.Errorf("surface: extension %q: %w", ext.Name, err)
	}
	a.extensions = append(a.extensions, ext.Name)
	return nil
}

// deepMerge folds src into dst. Nested maps merge recursively; a collision
// on a primitive key is rejected.
func deepMerge(dst, src map[string]any) error {
	for k, v := range src {
		existing, ok := dst[k]
		if !ok {
			dst[k] = v
			continue
		}
		dstMap, dstIsMap := existing.(map[string]any)
		srcMap, srcIsMap := v.(map[string]any)
		if dstIsMap && srcIsMap {
			if err := deepMerge(dstMap, srcMap); err != nil {
				return err
			}
			continue
		}
		return fmt.Errorf("option key %q already set", k)
	}
	return nil
}
