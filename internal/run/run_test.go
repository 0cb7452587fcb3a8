package run

import "testing"

func TestExec_Run(t *testing.T) {
	var e Exec

	if err := e.Run("true"); err != nil {
		t.Errorf("Run(true) error = %v", err)
	}
	if err := e.Run("false"); err == nil {
		t.Error("Run(false) error = nil, want exit error")
	}
	if err := e.Run("/nonexistent/binary"); err == nil {
		t.Error("Run(nonexistent) error = nil, want start error")
	}
}

func TestExec_StartWait(t *testing.T) {
	var e Exec

	h, err := e.Start("true")
	if err != nil {
		t.Fatalf("Start(true) error = %v", err)
	}
	if err := h.Wait(); err != nil {
		t.Errorf("Wait() error = %v", err)
	}
}
