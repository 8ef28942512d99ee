package progress

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	updates []int64
	done    bool
}

func (r *recorder) Start(int64, string) {}
func (r *recorder) Update(n int64)      { r.updates = append(r.updates, n) }
func (r *recorder) Finish()             { r.done = true }

func TestReaderReportsBytes(t *testing.T) {
	rec := &recorder{}
	r := NewReader(strings.NewReader("nombre,apellidos\nAna,Soto\n"), rec)

	buf := make([]byte, 8)
	var out bytes.Buffer
	_, err := io.CopyBuffer(&out, r, buf)
	require.NoError(t, err)

	assert.Equal(t, int64(out.Len()), r.Count())
	require.NotEmpty(t, rec.updates)
	assert.Equal(t, r.Count(), rec.updates[len(rec.updates)-1])
}

func TestReaderNilReporter(t *testing.T) {
	r := NewReader(strings.NewReader("abc"), nil)
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "abc", string(b))
}

func TestCLIProgressWritesToOutput(t *testing.T) {
	var out bytes.Buffer
	p := NewCLIProgress(&out)
	p.Start(10, "Subiendo leads.csv")
	p.Update(10)
	p.Finish()
	assert.Contains(t, out.String(), "Subiendo leads.csv")
}
