package document

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pelletier/go-toml/v2"

	"github.com/starford/graphblog/internal/apperr"
	"github.com/starford/graphblog/internal/models"
)

var errEmptyBlock = errors.New("metadata block is empty")

// ErrDelimiter reports a value that would end the metadata block early.
var ErrDelimiter = errors.New("value contains the " + Delimiter + " delimiter")

// envelope mirrors models.Metadata with pointer fields so a missing key can be
// told apart from a zero value.
type envelope struct {
	Title       *string         `toml:"title" json:"title"`
	ID          *string         `toml:"id" json:"id"`
	Author      *string         `toml:"author" json:"author"`
	Description *string         `toml:"description" json:"description"`
	Date        *toml.LocalDate `toml:"date" json:"date"`
	Tag         *string         `toml:"tag" json:"tag"`
	Image       *string         `toml:"image" json:"image"`
	Icon        *string         `toml:"icon" json:"icon"`
	Draft       *bool           `toml:"draft" json:"draft"`
}

// Validate checks that every key is present and that id is non-empty.
func (e *envelope) Validate() error {
	return validation.ValidateStruct(e,
		validation.Field(&e.Title, validation.NotNil),
		validation.Field(&e.ID, validation.Required),
		validation.Field(&e.Author, validation.NotNil),
		validation.Field(&e.Description, validation.NotNil),
		validation.Field(&e.Date, validation.NotNil),
		validation.Field(&e.Tag, validation.NotNil),
		validation.Field(&e.Image, validation.NotNil),
		validation.Field(&e.Icon, validation.NotNil),
		validation.Field(&e.Draft, validation.NotNil),
	)
}

func (e *envelope) metadata() models.Metadata {
	return models.Metadata{
		Title:       *e.Title,
		ID:          *e.ID,
		Author:      *e.Author,
		Description: *e.Description,
		Date:        *e.Date,
		Tag:         *e.Tag,
		Image:       *e.Image,
		Icon:        *e.Icon,
		Draft:       *e.Draft,
	}
}

// Decode parses a TOML metadata block. An empty block, a syntax error, a value
// of the wrong type, or a missing key all fail with an apperr metadata error;
// a zero-valued record is never returned in place of an error.
func Decode(block string) (models.Metadata, error) {
	if strings.TrimSpace(block) == "" {
		return models.Metadata{}, apperr.Metadata("", errEmptyBlock)
	}
	var env envelope
	if err := toml.Unmarshal([]byte(block), &env); err != nil {
		return models.Metadata{}, apperr.Metadata("", fmt.Errorf("decode toml: %w", err))
	}
	if err := env.Validate(); err != nil {
		return models.Metadata{}, apperr.Metadata("", fmt.Errorf("validate: %w", err))
	}
	return env.metadata(), nil
}

func noDelimiter(value any) error {
	if s, _ := value.(string); strings.Contains(s, Delimiter) {
		return validation.NewError("validation_delimiter", "must not contain "+Delimiter)
	}
	return nil
}

// Encode renders m as a TOML metadata block. Values containing the delimiter
// are rejected since the block could not be split back out.
func Encode(m models.Metadata) (string, error) {
	safe := validation.By(noDelimiter)
	if err := validation.ValidateStruct(&m,
		validation.Field(&m.Title, safe),
		validation.Field(&m.ID, safe),
		validation.Field(&m.Author, safe),
		validation.Field(&m.Description, safe),
		validation.Field(&m.Tag, safe),
		validation.Field(&m.Image, safe),
		validation.Field(&m.Icon, safe),
	); err != nil {
		return "", fmt.Errorf("encode: %w: %v", ErrDelimiter, err)
	}
	out, err := toml.Marshal(m)
	if err != nil {
		return "", fmt.Errorf("encode toml: %w", err)
	}
	return string(out), nil
}

// Format assembles a complete document from metadata and a markdown body.
// The body may not contain the delimiter either.
func Format(m models.Metadata, body string) (string, error) {
	if strings.Contains(body, Delimiter) {
		return "", fmt.Errorf("format: body: %w", ErrDelimiter)
	}
	block, err := Encode(m)
	if err != nil {
		return "", err
	}
	return Delimiter + "\n" + block + Delimiter + "\n" + body, nil
}

// Parse splits and decodes raw. Errors carry slug as their path.
func Parse(slug string, raw []byte) (*models.Document, error) {
	block, body := Split(string(raw))
	meta, err := Decode(block)
	if err != nil {
		return nil, apperr.WithPath(err, slug)
	}
	return &models.Document{
		Slug:     slug,
		Metadata: meta,
		Body:     body,
		Checksum: Checksum(raw),
	}, nil
}

// Checksum returns the hex-encoded SHA-256 digest of a raw source file.
func Checksum(raw []byte) string {
	h := sha256.Sum256(raw)
	return hex.EncodeToString(h[:])
}
