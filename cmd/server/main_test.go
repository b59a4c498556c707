package main

import (
	"testing"
	"time"
)

func TestWriteTimeout(t *testing.T) {
	tests := []struct {
		name  string
		fetch time.Duration
		want  time.Duration
	}{
		{name: "default fetch timeout", fetch: 15 * time.Second, want: 20 * time.Second},
		{name: "short fetch timeout", fetch: time.Second, want: 6 * time.Second},
		{name: "no fetch timeout", fetch: 0, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := writeTimeout(tt.fetch); got != tt.want {
				t.Errorf("writeTimeout(%v) = %v, want %v", tt.fetch, got, tt.want)
			}
		})
	}
}
