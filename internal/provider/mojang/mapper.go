package mojang

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/lu-zhengda/aliases/internal/domain"
)

var (
	errMissingID   = errors.New("response has no id field")
	errMissingName = errors.New("history entry has no name field")
)

// parseAccountID scans the top-level object for the "id" field and ignores
// everything else.
func parseAccountID(r io.Reader) (domain.AccountID, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '{'); err != nil {
		return "", err
	}

	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return "", err
		}
		if key != "id" {
			if err := skipValue(dec); err != nil {
				return "", err
			}
			continue
		}

		var id string
		if err := dec.Decode(&id); err != nil {
			return "", fmt.Errorf("failed to decode id: %w", err)
		}
		if id == "" {
			return "", errMissingID
		}
		return domain.AccountID(id), nil
	}
	return "", errMissingID
}

// parseNameHistory decodes the history array, keeping provider order.
func parseNameHistory(r io.Reader) ([]domain.NameRecord, error) {
	dec := json.NewDecoder(r)
	if err := expectDelim(dec, '['); err != nil {
		return nil, err
	}

	var records []domain.NameRecord
	for dec.More() {
		rec, err := parseNameRecord(dec)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", len(records), err)
		}
		records = append(records, rec)
	}

	if err := expectDelim(dec, ']'); err != nil {
		return nil, err
	}
	return records, nil
}

func parseNameRecord(dec *json.Decoder) (domain.NameRecord, error) {
	var rec domain.NameRecord
	if err := expectDelim(dec, '{'); err != nil {
		return rec, err
	}

	var name *string
	for dec.More() {
		key, err := objectKey(dec)
		if err != nil {
			return rec, err
		}

		switch key {
		case "name":
			if err := dec.Decode(&name); err != nil {
				return rec, fmt.Errorf("failed to decode name: %w", err)
			}
		case "changedToAt":
			var ms *int64
			if err := dec.Decode(&ms); err != nil {
				return rec, fmt.Errorf("failed to decode changedToAt: %w", err)
			}
			if ms != nil {
				t := time.UnixMilli(*ms).UTC()
				rec.ChangedAt = &t
			}
		default:
			if err := skipValue(dec); err != nil {
				return rec, err
			}
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return rec, err
	}
	if name == nil {
		return rec, errMissingName
	}
	rec.Name = *name
	return rec, nil
}

// expectDelim consumes the next token and checks it is the given delimiter.
func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return fmt.Errorf("failed to read token: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func objectKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", fmt.Errorf("failed to read object key: %w", err)
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func skipValue(dec *json.Decoder) error {
	var skip json.RawMessage
	if err := dec.Decode(&skip); err != nil {
		return fmt.Errorf("failed to skip value: %w", err)
	}
	return nil
}
