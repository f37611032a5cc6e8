package kvstore

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

func TestMemoryStorePutGet(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	if err := s.Put(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("put: %v", err)
	}
	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != "v1" {
		t.Fatalf("get = %q", got)
	}
}

func TestMemoryStoreMissIsErrKeyMiss(t *testing.T) {
	s := NewMemoryStore()
	if _, err := s.Get(context.Background(), "absent"); !errors.Is(err, ErrKeyMiss) {
		t.Fatalf("want ErrKeyMiss, got %v", err)
	}
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	src := []byte("abc")
	if err := s.Put(ctx, "k", src); err != nil {
		t.Fatal(err)
	}
	src[0] = 'x'

	got, err := s.Get(ctx, "k")
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "abc" {
		t.Fatalf("stored value aliased caller buffer: %q", got)
	}

	got[0] = 'y'
	again, _ := s.Get(ctx, "k")
	if string(again) != "abc" {
		t.Fatalf("returned value aliased store buffer: %q", again)
	}
}

func TestMemoryStoreDeleteAndExists(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_ = s.Put(ctx, "a", []byte("1"))
	_ = s.Put(ctx, "b", []byte("2"))

	ok, err := s.Exists(ctx, "a")
	if err != nil || !ok {
		t.Fatalf("exists a = %v %v", ok, err)
	}

	if err := s.Delete(ctx, "a", "missing"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if ok, _ := s.Exists(ctx, "a"); ok {
		t.Fatal("a still exists after delete")
	}

	keys, err := s.ListKeys(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(keys, []string{"b"}) {
		t.Fatalf("keys = %v", keys)
	}
}

func TestJSONHelpers(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	type payload struct {
		Name  string  `json:"name"`
		Value float64 `json:"value"`
	}

	in := payload{Name: "net", Value: 1.25}
	if err := PutJSON(ctx, s, "p", in); err != nil {
		t.Fatalf("put json: %v", err)
	}

	var out payload
	if err := GetJSON(ctx, s, "p", &out); err != nil {
		t.Fatalf("get json: %v", err)
	}
	if out != in {
		t.Fatalf("round trip: %+v", out)
	}

	var missing payload
	if err := GetJSON(ctx, s, "nope", &missing); !errors.Is(err, ErrKeyMiss) {
		t.Fatalf("want ErrKeyMiss, got %v", err)
	}
}
