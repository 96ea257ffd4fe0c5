package fan

import (
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"testing/iotest"
)

func TestViewsReplayInput(t *testing.T) {
	in := New(strings.NewReader("one\ntwo\n"))

	first := in.View()
	head := make([]byte, 3)
	if _, err := io.ReadFull(first, head); err != nil {
		t.Fatal(err)
	}
	if string(head) != "one" {
		t.Errorf("first view starts with %q", head)
	}

	all, err := io.ReadAll(in.View())
	if err != nil {
		t.Fatal(err)
	}
	if string(all) != "one\ntwo\n" {
		t.Errorf("second view read %q", all)
	}

	rest, err := io.ReadAll(first)
	if err != nil {
		t.Fatal(err)
	}
	if string(rest) != "\ntwo\n" {
		t.Errorf("first view continued with %q", rest)
	}
	if in.Buffered() != 8 {
		t.Errorf("Buffered() = %d, want 8", in.Buffered())
	}
}

func TestOneByteSource(t *testing.T) {
	in := New(iotest.OneByteReader(strings.NewReader("abc")))
	for i := 0; i < 2; i++ {
		got, err := io.ReadAll(in.View())
		if err != nil {
			t.Fatal(err)
		}
		if string(got) != "abc" {
			t.Errorf("view %d read %q", i, got)
		}
	}
}

func TestDataWithError(t *testing.T) {
	in := New(iotest.DataErrReader(strings.NewReader("ab")))
	got, err := io.ReadAll(in.View())
	if err != nil || string(got) != "ab" {
		t.Errorf("read %q, %v", got, err)
	}
}

func TestSourceError(t *testing.T) {
	boom := errors.New("boom")
	in := New(iotest.ErrReader(boom))
	for i := 0; i < 2; i++ {
		if _, err := io.ReadAll(in.View()); !errors.Is(err, boom) {
			t.Errorf("view %d: error = %v, want boom", i, err)
		}
	}
}

func TestConcurrentViews(t *testing.T) {
	text := strings.Repeat("line\n", 100)
	in := New(iotest.HalfReader(strings.NewReader(text)))

	var wg sync.WaitGroup
	results := make([]string, 4)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			b, err := io.ReadAll(in.View())
			if err != nil {
				t.Error(err)
			}
			results[i] = string(b)
		}(i)
	}
	wg.Wait()
	for i, r := range results {
		if r != text {
			t.Errorf("view %d read %d bytes, want %d", i, len(r), len(text))
		}
	}
}
