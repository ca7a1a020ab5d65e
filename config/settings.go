package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Settings configures the kiln command line tool.
type Settings struct {
	// Path is the definition file.
	Path     string `yaml:"path"      validate:"required"`
	Encoding string `yaml:"encoding"  validate:"omitempty,oneof=nested flat"`
	// Format overrides the format picked from the file extension.
	Format   string `yaml:"format"    validate:"omitempty,oneof=yaml yml json"`
	LogLevel string `yaml:"log_level" validate:"omitempty,oneof=debug info warn error"`
	Watch    bool   `yaml:"watch"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// DefaultSettings returns the settings used when no file is given.
func DefaultSettings() Settings {
	return Settings{
		Encoding: Nested.String(),
		LogLevel: "info",
	}
}

// LoadSettings reads YAML settings from path over [DefaultSettings].
// Unknown keys are rejected. The result is not validated, so flags can
// still fill in missing fields.
func LoadSettings(path string) (Settings, error) {
	s := DefaultSettings()

	f, err := os.Open(path)
	if err != nil {
		return s, fmt.Errorf("reading settings: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return s, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return s, nil
}

// Validate checks the settings fields.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return err
		}
		msgs := make([]string, 0, len(verrs))
		for _, e := range verrs {
			msgs = append(msgs, fieldMessage(e))
		}
		return fmt.Errorf("invalid settings: %s", strings.Join(msgs, "; "))
	}
	return nil
}

func fieldMessage(e validator.FieldError) string {
	field := strings.ToLower(e.Field())
	switch e.Tag() {
	case "required":
		return field + " is required"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	default:
		return field + " is invalid"
	}
}

// StoreEncoding returns the parsed Encoding.
func (s Settings) StoreEncoding() (Encoding, error) {
	return ParseEncoding(s.Encoding)
}

// FileFormat returns Format when set, otherwise the format implied by Path.
func (s Settings) FileFormat() (Format, error) {
	if s.Format == "" {
		return FormatFromPath(s.Path), nil
	}
	return ParseFormat(s.Format)
}

// Open opens the FileStore the settings describe.
func (s Settings) Open(opts ...StoreOption) (*FileStore, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	enc, err := s.StoreEncoding()
	if err != nil {
		return nil, err
	}
	format, err := s.FileFormat()
	if err != nil {
		return nil, err
	}
	return OpenFile(s.Path, enc, format, opts...)
}
