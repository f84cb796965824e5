package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestWrapWriteError_Classification(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"nil", nil, nil},
		{"enospc", errors.New("write /data: no space left on device"), ErrDiskFull},
		{"eacces", errors.New("open /data: permission denied"), ErrPermissionDenied},
		{"enoent", errors.New("stat /data: no such file or directory"), ErrNotFound},
		{"s3 missing key", errors.New("NoSuchKey: the specified key does not exist"), ErrNotFound},
		{"timeout", errors.New("context deadline exceeded"), ErrTimeout},
		{"throttled", errors.New("SlowDown: please reduce request rate"), ErrThrottled},
		{"credentials", errors.New("NoCredentialProviders: no valid providers in chain"), ErrAuth},
		{"forbidden", errors.New("AccessDenied: account not authorized"), ErrAccessDenied},
		{"refused", errors.New("dial tcp 10.0.0.1:443: connection refused"), ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := WrapWriteError(tt.err, "deck=d/run_id=r")
			if tt.want == nil {
				if wrapped != nil {
					t.Fatalf("expected nil, got %v", wrapped)
				}
				return
			}
			if !errors.Is(wrapped, tt.want) {
				t.Errorf("errors.Is(%v, %v) = false", wrapped, tt.want)
			}
		})
	}
}

func TestStorageError_PreservesChain(t *testing.T) {
	underlying := fmt.Errorf("s3 put: %w", errors.New("no space left on device"))
	wrapped := WrapWriteError(underlying, "deck=block-7/day=2026-08-31/run_id=run-1")

	var storageErr *StorageError
	if !errors.As(wrapped, &storageErr) {
		t.Fatal("expected *StorageError in chain")
	}
	if storageErr.Op != "write" {
		t.Errorf("op = %q, want write", storageErr.Op)
	}
	if storageErr.Path == "" {
		t.Error("path missing from storage error")
	}
	if !errors.Is(wrapped, ErrDiskFull) {
		t.Error("classification lost through wrapping")
	}
	if errors.Unwrap(wrapped) != underlying {
		t.Error("underlying error not preserved")
	}
}

func TestWrapInitError(t *testing.T) {
	err := WrapInitError(errors.New("ExpiredToken: the security token is expired"), "welldex")
	if !errors.Is(err, ErrAuth) {
		t.Errorf("expected ErrAuth, got %v", err)
	}
}

func TestClassify_TimeoutInterface(t *testing.T) {
	err := WrapReadError(&timeoutError{}, "welldex/snapshots")
	if !errors.Is(err, ErrTimeout) {
		t.Errorf("typed timeout not classified: %v", err)
	}
}

type timeoutError struct{}

func (*timeoutError) Error() string { return "i/o wait" }
func (*timeoutError) Timeout() bool { return true }
