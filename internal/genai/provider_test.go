package genai

import (
	"context"
	"errors"
	"testing"
)

func TestProviderUnconfigured(t *testing.T) {
	p, err := NewProvider(Options{})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	if p.Configured() {
		t.Fatal("provider should start unconfigured without a key")
	}
	if _, err := p.GenerateImage(context.Background(), "a cat"); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v, want ErrNotConfigured", err)
	}
}

func TestProviderConfigureRebuildsOnlyOnChange(t *testing.T) {
	p, err := NewProvider(Options{APIKey: "k1"})
	if err != nil {
		t.Fatalf("NewProvider: %v", err)
	}
	first := p.Client()
	if first == nil {
		t.Fatal("expected initial client")
	}

	if err := p.Configure("k1", ""); err != nil {
		t.Fatalf("Configure same pair: %v", err)
	}
	if p.Client() != first {
		t.Fatal("client rebuilt although key and endpoint are unchanged")
	}

	if err := p.Configure("k2", ""); err != nil {
		t.Fatalf("Configure new key: %v", err)
	}
	if p.Client() == first {
		t.Fatal("client not rebuilt after key change")
	}

	second := p.Client()
	if err := p.Configure("k2", "https://proxy.example/v1beta"); err != nil {
		t.Fatalf("Configure new endpoint: %v", err)
	}
	if p.Client() == second {
		t.Fatal("client not rebuilt after endpoint change")
	}
}
