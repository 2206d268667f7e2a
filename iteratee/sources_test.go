package iteratee

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/streamkit/errors"
)

func TestFromSeq(t *testing.T) {
	got := awaitValue(t, Apply(FromSeq(slices.Values([]string{"a", "b", "c"})), ToSlice[string]()))
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Errorf("got %v", got)
	}
}

func TestFromSeq_StopsEarly(t *testing.T) {
	yielded := 0
	seq := func(yield func(int) bool) {
		for i := 0; ; i++ {
			yielded++
			if !yield(i) {
				return
			}
		}
	}
	if got := awaitValue(t, Apply(FromSeq(seq), Head[int]())); *got != 0 {
		t.Errorf("got %d", *got)
	}
	if yielded != 1 {
		t.Errorf("expected the sequence to stop after one value, yielded %d", yielded)
	}
}

func TestFromChannel(t *testing.T) {
	ch := make(chan int, 3)
	ch <- 1
	ch <- 2
	ch <- 3
	close(ch)
	got := awaitValue(t, Apply(FromChannel(ch), ToSlice[int]()))
	if !slices.Equal(got, []int{1, 2, 3}) {
		t.Errorf("got %v", got)
	}
}

func TestRange(t *testing.T) {
	got := awaitValue(t, Apply(Range[uint8](250, 255), ToSlice[uint8]()))
	if !slices.Equal(got, []uint8{250, 251, 252, 253, 254}) {
		t.Errorf("got %v", got)
	}
	if empty := awaitValue(t, Apply(Range(5, 5), ToSlice[int]())); len(empty) != 0 {
		t.Errorf("expected empty range, got %v", empty)
	}
}

func TestFromFile_Chunks(t *testing.T) {
	path := writeTemp(t, "0123456789")
	chunks := awaitValue(t, Apply(FromFile(path, 4), ToSlice[[]byte]()))
	var sizes []int
	var joined strings.Builder
	for _, c := range chunks {
		sizes = append(sizes, len(c))
		joined.Write(c)
	}
	if joined.String() != "0123456789" {
		t.Errorf("got %q", joined.String())
	}
	if !slices.Equal(sizes, []int{4, 4, 2}) {
		t.Errorf("unexpected chunk sizes %v", sizes)
	}
}

func TestFromFileLines(t *testing.T) {
	path := writeTemp(t, "alpha\nbeta\ngamma\n")
	got := awaitValue(t, Apply(FromFileLines(path), ToSlice[string]()))
	if !slices.Equal(got, []string{"alpha", "beta", "gamma"}) {
		t.Errorf("got %v", got)
	}
}

func TestFromFile_MissingIsSourceError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.txt")
	_, err := Apply(FromFileLines(missing), ToSlice[string]()).Await(2 * time.Second)
	if !errors.IsCode(err, errors.ErrCodeSourceFailed) {
		t.Fatalf("expected SOURCE_FAILED, got %v", err)
	}
	if !stderrors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist cause, got %v", err)
	}
}

func TestFromReader_ReadErrorIsSourceError(t *testing.T) {
	boom := stderrors.New("disk gone")
	r := &failingReader{data: []byte("abc"), err: boom}
	var got []byte
	_, err := Apply[[]byte, Unit](FromReader(r, 2), Foreach(func(c []byte) { got = append(got, c...) })).Await(2 * time.Second)
	if !errors.IsCode(err, errors.ErrCodeSourceFailed) || !stderrors.Is(err, boom) {
		t.Fatalf("expected SOURCE_FAILED wrapping boom, got %v", err)
	}
	if string(got) != "abc" {
		t.Errorf("expected data before the failure to be delivered, got %q", got)
	}
}

func TestFromLines(t *testing.T) {
	got := awaitValue(t, Apply(FromLines(strings.NewReader("one\ntwo")), ToSlice[string]()))
	if !slices.Equal(got, []string{"one", "two"}) {
		t.Errorf("got %v", got)
	}
}

// writeTemp writes content to a fresh file and returns its path.
func writeTemp(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

// failingReader returns data and then err.
type failingReader struct {
	data []byte
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, r.err
	}
	n := copy(p, r.data)
	r.data = r.data[n:]
	return n, nil
}
