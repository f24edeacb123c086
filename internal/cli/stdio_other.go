//go:build !unix

package cli

import "os"

// redirectStdIO swaps the os.Stdout and os.Stderr files. Runtime panic
// output is not captured on these platforms.
func redirectStdIO(path string) error {
	if path == "" {
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	os.Stdout = f
	os.Stderr = f
	return nil
}
