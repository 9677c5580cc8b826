package params

import "fmt"

// Validate checks basic shape and sizes of the parameter set.
func Validate(p *Parameters) error {
	if p.Rate < 1 {
		return fmt.Errorf("params: %w: rate must be positive, got %d", ErrConfiguration, p.Rate)
	}
	if p.StateSize != p.Rate+1 {
		return fmt.Errorf("params: %w: state size %d does not match rate %d", ErrConfiguration, p.StateSize, p.Rate)
	}
	if p.FullRounds%2 != 0 {
		return fmt.Errorf("params: %w: full rounds must be even, got %d", ErrConfiguration, p.FullRounds)
	}
	if p.PartialRounds < 1 {
		return fmt.Errorf("params: %w: partial rounds must be positive, got %d", ErrConfiguration, p.PartialRounds)
	}
	if p.Alpha < 3 || p.Alpha%2 == 0 {
		return fmt.Errorf("params: %w: alpha must be an odd exponent >= 3, got %d", ErrConfiguration, p.Alpha)
	}
	width := p.StateSize
	if len(p.Arc) != p.Rounds()*width {
		return fmt.Errorf("params: %w: arc length mismatch (have %d, want %d)", ErrConfiguration, len(p.Arc), p.Rounds()*width)
	}
	if len(p.MDS) != width*width {
		return fmt.Errorf("params: %w: mds length mismatch (have %d, want %d)", ErrConfiguration, len(p.MDS), width*width)
	}
	return nil
}
