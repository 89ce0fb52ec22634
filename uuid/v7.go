package uuid

import (
	"io"
	"time"

	"github.com/gofrs/uuid/v5"
)

// V7StringGenerator produces the run id stamped on every verification report.
type V7StringGenerator func(time.Time) (string, error)

// NewV7 generates time ordered run ids; a fixed reader makes them deterministic.
func NewV7(randReader io.Reader) V7StringGenerator {
	gen := uuid.NewGenWithOptions(
		uuid.WithRandomReader(randReader),
	)

	return func(time time.Time) (string, error) {
		uuidV7, err := gen.NewV7AtTime(time)
		if err != nil {
			return "", err
		}
		return uuidV7.String(), nil
	}
}

// ConstantRandReader yields the same run id for the same report time.
type ConstantRandReader struct{}

func (c *ConstantRandReader) Read(b []byte) (int, error) {
	for i := range b {
		b[i] = 0x42
	}
	return len(b), nil
}
