package identifier

import (
	"crypto/sha256"
	"database/sql/driver"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// Size is the length of a derived identifier in bytes.
const Size = 32

// ID is a derived ledger identifier. It is stored in the database as a
// 64-character hex string column.
type ID [Size]byte

// Zero is the empty identifier.
var Zero ID

// Derive computes an identifier from the canonical byte encoding of the given
// parts, in order. The same parts always produce the same identifier.
func Derive(parts ...[]byte) ID {
	h := sha256.New()
	for _, p := range parts {
		h.Write(p)
	}
	var id ID
	copy(id[:], h.Sum(nil))
	return id
}

// String encodes a string part.
func String(s string) []byte {
	return []byte(s)
}

// Uint64 encodes an unsigned integer part big-endian.
func Uint64(v uint64) []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], v)
	return b[:]
}

// Int64 encodes a signed integer part big-endian.
func Int64(v int64) []byte {
	return Uint64(uint64(v))
}

// Hex returns the lowercase hex encoding of the identifier.
func (id ID) Hex() string {
	return hex.EncodeToString(id[:])
}

func (id ID) String() string {
	return id.Hex()
}

// IsZero reports whether the identifier is unset.
func (id ID) IsZero() bool {
	return id == Zero
}

// Parse decodes a 64-character hex string into an ID.
func Parse(s string) (ID, error) {
	var id ID
	b, err := hex.DecodeString(s)
	if err != nil {
		return Zero, fmt.Errorf("invalid identifier %q: %w", s, err)
	}
	if len(b) != Size {
		return Zero, fmt.Errorf("invalid identifier %q: expected %d bytes, got %d", s, Size, len(b))
	}
	copy(id[:], b)
	return id, nil
}

// Value implements driver.Valuer so gorm persists identifiers as hex strings.
func (id ID) Value() (driver.Value, error) {
	return id.Hex(), nil
}

// Scan implements sql.Scanner.
func (id *ID) Scan(src interface{}) error {
	switch v := src.(type) {
	case string:
		parsed, err := Parse(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case []byte:
		parsed, err := Parse(string(v))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case nil:
		*id = Zero
		return nil
	default:
		return fmt.Errorf("cannot scan %T into identifier.ID", src)
	}
}

// GormDataType tells gorm which column type to use.
func (ID) GormDataType() string {
	return "char(64)"
}

// MarshalJSON renders the identifier as a hex string.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.Hex() + `"`), nil
}

// UnmarshalJSON parses a hex string identifier.
func (id *ID) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("invalid identifier JSON: %s", data)
	}
	parsed, err := Parse(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
