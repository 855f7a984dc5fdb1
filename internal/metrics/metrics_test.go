// file: internal/metrics/metrics_test.go
// version: 1.0.0
// guid: 7a8b9c0d-1e2f-3a4b-5c6d-7e8f9a0b1c2d
// last-edited: 2026-01-19

package metrics

import (
	"testing"
	"time"
)

func TestIncOperationStarted(t *testing.T) {
	IncOperationStarted("test_operation")
}

func TestIncOperationCompleted(t *testing.T) {
	IncOperationCompleted("test_operation")
}

func TestIncOperationFailed(t *testing.T) {
	IncOperationFailed("test_operation")
}

func TestIncOperationCanceled(t *testing.T) {
	IncOperationCanceled("test_operation")
}

func TestObserveOperationDuration(t *testing.T) {
	ObserveOperationDuration("test_operation", 100*time.Millisecond)
}

func TestSetBooks(t *testing.T) {
	SetBooks(42)
}

func TestSetFolders(t *testing.T) {
	SetFolders(5)
}

func TestSetMemoryAlloc(t *testing.T) {
	SetMemoryAlloc(1024 * 1024)
}

func TestSetGoroutines(t *testing.T) {
	SetGoroutines(10)
}

func TestMetricsLifecycle(t *testing.T) {
	opType := "test_lifecycle"
	IncOperationStarted(opType)
	start := time.Now()
	time.Sleep(10 * time.Millisecond)
	duration := time.Since(start)
	ObserveOperationDuration(opType, duration)
	IncOperationCompleted(opType)
}

func TestMetricsSetters(t *testing.T) {
	SetBooks(100)
	SetFolders(10)
	SetMemoryAlloc(1024 * 1024 * 100)
	SetGoroutines(20)
}
