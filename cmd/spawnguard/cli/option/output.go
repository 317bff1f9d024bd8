package option

import (
	"fmt"
	"strings"

	"github.com/anchore/clio"
)

type Format string

const (
	JSON  Format = "json"
	Table Format = "table"
)

var ValidFormats = []Format{JSON, Table}

type Output struct {
	Format string `json:"output" yaml:"output" mapstructure:"output"`
}

func DefaultOutput() Output {
	return Output{
		Format: string(Table),
	}
}

func (o *Output) AddFlags(flags clio.FlagSet) {
	flags.StringVarP(&o.Format, "output", "o", fmt.Sprintf("output format %v", ValidFormats))
}

func (o *Output) PostLoad() error {
	f := Format(strings.ToLower(o.Format))
	for _, valid := range ValidFormats {
		if f == valid {
			o.Format = string(f)
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q (expected one of %v)", o.Format, ValidFormats)
}

func (o Output) Is(f Format) bool {
	return Format(o.Format) == f
}
