package productedit

import (
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestUploadBatchPartialFailure(t *testing.T) {
	storage := newStubStorage()
	storage.urls["a.png"] = "/a.png"
	storage.fails["b.png"] = errors.New("status 500")
	notices := NewNoticeLog()
	sink := &recordingSink{}
	pipeline := NewUploadPipeline(storage, notices, sink, UploadOptions{Concurrency: 2, PreviewMaxBytes: 4})

	batch := pipeline.Start([]UploadFile{
		{Name: "a.png", Size: 3, ContentType: "image/png", Data: []byte("aaa")},
		{Name: "b.png", Size: 3, ContentType: "image/png", Data: []byte("bbb")},
	})
	if len(batch.Pending) != 2 {
		t.Fatalf("expected 2 pending uploads, got %d", len(batch.Pending))
	}
	result := batch.Wait()
	pipeline.Wait()

	if !reflect.DeepEqual(sink.urls, []string{"/a.png"}) {
		t.Fatalf("unexpected media list: %v", sink.urls)
	}
	if !reflect.DeepEqual(result.Failed, []string{"b.png"}) {
		t.Fatalf("unexpected failures: %v", result.Failed)
	}
	if pipeline.Arena().Len() != 0 {
		t.Fatalf("preview handles leaked: %d", pipeline.Arena().Len())
	}
	if len(pipeline.Pending()) != 0 {
		t.Fatalf("pending uploads left behind: %v", pipeline.Pending())
	}

	drained := notices.Drain()
	if len(drained) != 2 {
		t.Fatalf("expected two notifications, got %+v", drained)
	}
	if drained[0].Kind != NoticeUploadsSucceeded || drained[0].Count != 1 {
		t.Fatalf("unexpected success notice: %+v", drained[0])
	}
	if drained[1].Kind != NoticeUploadsFailed || !reflect.DeepEqual(drained[1].Names, []string{"b.png"}) {
		t.Fatalf("unexpected failure notice: %+v", drained[1])
	}
}

func TestUploadFailureOfFirstFileDoesNotBlockSecond(t *testing.T) {
	storage := newStubStorage()
	storage.fails["x.png"] = errors.New("connection reset")
	storage.urls["y.png"] = "/y.png"
	sink := &recordingSink{}
	pipeline := NewUploadPipeline(storage, nil, sink, UploadOptions{Concurrency: 1})

	result := pipeline.Start([]UploadFile{{Name: "x.png"}, {Name: "y.png"}}).Wait()
	if !reflect.DeepEqual(sink.urls, []string{"/y.png"}) {
		t.Fatalf("expected y.png to be appended, got %v", sink.urls)
	}
	if !reflect.DeepEqual(result.Succeeded, []string{"/y.png"}) || !reflect.DeepEqual(result.Failed, []string{"x.png"}) {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestUploadMissingURLIsFailure(t *testing.T) {
	storage := newStubStorage()
	storage.urls["a.png"] = ""
	sink := &recordingSink{}
	pipeline := NewUploadPipeline(storage, nil, sink, UploadOptions{})

	result := pipeline.Start([]UploadFile{{Name: "a.png"}}).Wait()
	if len(sink.urls) != 0 {
		t.Fatalf("empty url must not be appended: %v", sink.urls)
	}
	if !reflect.DeepEqual(result.Failed, []string{"a.png"}) {
		t.Fatalf("expected a.png to fail, got %+v", result)
	}
}

func TestUploadAppendsInCompletionOrder(t *testing.T) {
	storage := newStubStorage()
	storage.urls["slow.png"] = "/slow.png"
	storage.urls["fast.png"] = "/fast.png"
	gate := make(chan struct{})
	storage.gates["slow.png"] = gate
	sink := &recordingSink{}
	pipeline := NewUploadPipeline(storage, nil, sink, UploadOptions{Concurrency: 2})

	batch := pipeline.Start([]UploadFile{{Name: "slow.png"}, {Name: "fast.png"}})
	deadline := time.After(2 * time.Second)
	for len(pipeline.Pending()) != 1 {
		select {
		case <-deadline:
			t.Fatalf("fast upload did not settle")
		case <-time.After(5 * time.Millisecond):
		}
	}
	close(gate)
	result := batch.Wait()

	if !reflect.DeepEqual(result.Succeeded, []string{"/fast.png", "/slow.png"}) {
		t.Fatalf("expected completion order, got %v", result.Succeeded)
	}
	if !reflect.DeepEqual(sink.urls, []string{"/fast.png", "/slow.png"}) {
		t.Fatalf("unexpected media order: %v", sink.urls)
	}
}

func TestUploadCloseReleasesPreviewsAndDropsLateResults(t *testing.T) {
	storage := newStubStorage()
	storage.urls["late.png"] = "/late.png"
	gate := make(chan struct{})
	storage.gates["late.png"] = gate
	notices := NewNoticeLog()
	sink := &recordingSink{}
	pipeline := NewUploadPipeline(storage, notices, sink, UploadOptions{PreviewMaxBytes: 16})

	batch := pipeline.Start([]UploadFile{{Name: "late.png", Data: []byte("preview")}})
	if pipeline.Arena().Len() != 1 {
		t.Fatalf("expected one live preview, got %d", pipeline.Arena().Len())
	}
	pipeline.Close()
	if pipeline.Arena().Len() != 0 {
		t.Fatalf("close must release previews immediately")
	}

	close(gate)
	batch.Wait()
	pipeline.Wait()
	if len(sink.urls) != 0 {
		t.Fatalf("late result should be dropped, got %v", sink.urls)
	}
	if got := notices.Drain(); len(got) != 0 {
		t.Fatalf("no notifications expected after close, got %+v", got)
	}

	after := pipeline.Start([]UploadFile{{Name: "late.png"}})
	if len(after.Pending) != 0 {
		t.Fatalf("closed pipeline should not accept uploads")
	}
	after.Wait()
}

func TestPreviewArenaTruncatesAndReleases(t *testing.T) {
	arena := NewPreviewArena(3)
	handle := arena.Allocate("image/png", []byte("abcdef"))
	contentType, data, ok := arena.Get(handle)
	if !ok || contentType != "image/png" || string(data) != "abc" {
		t.Fatalf("unexpected preview: %q %q %v", contentType, data, ok)
	}
	arena.Release(handle)
	arena.Release(handle)
	if _, _, ok := arena.Get(handle); ok {
		t.Fatalf("released handle should be gone")
	}
	if arena.Len() != 0 {
		t.Fatalf("arena should be empty")
	}
}
