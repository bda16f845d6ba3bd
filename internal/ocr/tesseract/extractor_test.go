package tesseract_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medscan/internal/domain"
	"medscan/internal/ocr/tesseract"
	"medscan/internal/port"
)

const sampleTSV = "level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n" +
	"1\t1\t0\t0\t0\t0\t0\t0\t640\t480\t-1\t\n" +
	"5\t1\t1\t1\t1\t1\t10\t10\t50\t12\t96.5\tHemoglobin:\n" +
	"5\t1\t1\t1\t1\t2\t70\t10\t30\t12\t93.5\t14.2\n" +
	"5\t1\t1\t1\t1\t3\t110\t10\t30\t12\t90\tg/dL\n" +
	"5\t1\t1\t1\t2\t1\t10\t30\t50\t12\t80\tGlucose:\n" +
	"5\t1\t1\t1\t2\t2\t70\t30\t30\t12\t-1\t\n" +
	"5\t1\t1\t1\t2\t3\t110\t30\t30\t12\t90\t95\n"

type fakeRunner struct {
	name  string
	args  []string
	stdin []byte
	out   string
	err   error
}

func (f *fakeRunner) Run(_ context.Context, stdin []byte, name string, args ...string) ([]byte, []byte, error) {
	f.name, f.args, f.stdin = name, args, stdin
	return []byte(f.out), []byte("stderr"), f.err
}

func TestParseTSV(t *testing.T) {
	text, conf := tesseract.ParseTSV(sampleTSV)

	assert.Equal(t, "Hemoglobin: 14.2 g/dL\nGlucose: 95", text)
	assert.InDelta(t, 90.0, conf, 0.001)
}

func TestParseTSV_Empty(t *testing.T) {
	text, conf := tesseract.ParseTSV("level\tpage_num\n")
	assert.Empty(t, text)
	assert.Zero(t, conf)
}

func TestExtractor_Extract(t *testing.T) {
	runner := &fakeRunner{out: sampleTSV}
	e := tesseract.New(tesseract.Config{PSM: 6}, runner)

	doc, err := e.Extract(context.Background(), port.ExtractInput{
		Content:  []byte{0x89, 'P', 'N', 'G'},
		FileType: domain.FileTypePNG,
	})

	require.NoError(t, err)
	assert.Equal(t, "tesseract", runner.name)
	assert.Equal(t, []string{"stdin", "stdout", "-l", "eng", "--psm", "6", "tsv"}, runner.args)
	assert.Equal(t, []byte{0x89, 'P', 'N', 'G'}, runner.stdin)
	assert.Equal(t, "Hemoglobin: 14.2 g/dL\nGlucose: 95", doc.Text)
	assert.InDelta(t, 90.0, doc.SourceConfidence, 0.001)
	assert.Equal(t, "tesseract", doc.Backend)
}

func TestExtractor_RunnerFailure(t *testing.T) {
	e := tesseract.New(tesseract.Config{}, &fakeRunner{err: errors.New("exit status 1")})

	_, err := e.Extract(context.Background(), port.ExtractInput{Content: []byte("img"), FileType: domain.FileTypeJPG})
	assert.ErrorIs(t, err, domain.ErrOCRFailed)
}

func TestExtractor_EmptyContent(t *testing.T) {
	e := tesseract.New(tesseract.Config{}, &fakeRunner{})

	_, err := e.Extract(context.Background(), port.ExtractInput{FileType: domain.FileTypeJPG})
	assert.ErrorIs(t, err, domain.ErrEmptyFile)
}

func TestExtractor_Supports(t *testing.T) {
	e := tesseract.New(tesseract.Config{}, nil)

	assert.True(t, e.Supports(domain.FileTypeJPG))
	assert.True(t, e.Supports(domain.FileTypePNG))
	assert.False(t, e.Supports(domain.FileTypePDF))
}
