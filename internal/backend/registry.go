package backend

import (
	"fmt"
)

// Registered backend names, as used in configuration.
const (
	NameBCn     = "bcn"
	NameDXT     = "dxt"
	NameImage   = "image"
	NameBuiltin = "builtin"
)

var constructors = map[string]func(Options) Backend{
	NameBCn:     func(o Options) Backend { return NewBCn(o) },
	NameDXT:     func(o Options) Backend { return NewDXT(o) },
	NameImage:   func(o Options) Backend { return NewStdImage(o) },
	NameBuiltin: func(o Options) Backend { return NewBuiltin(o) },
}

// Names lists every registered backend name.
func Names() []string {
	return []string{NameBCn, NameDXT, NameImage, NameBuiltin}
}

// New builds the backend registered under name.
func New(name string, opts Options) (Backend, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return ctor(opts), nil
}

// DefaultChains is the preference order when nothing is configured.
func DefaultChains() map[Direction][]string {
	return map[Direction][]string{
		PNGToDDS: {NameBCn, NameBuiltin},
		DDSToPNG: {NameBCn, NameDXT, NameImage, NameBuiltin},
	}
}

// BuildChains turns per-direction name lists into backend chains. A name that
// is unknown, or a backend that cannot serve the direction, is an error.
func BuildChains(names map[Direction][]string, opts Options) (map[Direction][]Backend, error) {
	out := make(map[Direction][]Backend, len(names))
	for d, list := range names {
		for _, name := range list {
			b, err := New(name, opts)
			if err != nil {
				return nil, err
			}
			if !b.Supports(d) {
				return nil, fmt.Errorf("backend %q cannot convert %s", name, d)
			}
			out[d] = append(out[d], b)
		}
	}
	return out, nil
}
