package utils

import "fmt"

// DataSize is a byte count which prints in binary units.
type DataSize float64

//nolint:mnd
func (d DataSize) String() string {
	switch {
	case d >= 1<<40:
		return fmt.Sprintf("%.2f TiB", d/(1<<40))
	case d >= 1<<30:
		return fmt.Sprintf("%.2f GiB", d/(1<<30))
	case d >= 1<<20:
		return fmt.Sprintf("%.2f MiB", d/(1<<20))
	case d >= 1<<10:
		return fmt.Sprintf("%.2f KiB", d/(1<<10))
	}
	return fmt.Sprintf("%.2f B", d)
}
