package main

import "testing"

func TestParseItemIDs(t *testing.T) {
	ids, err := parseItemIDs("1, 2,3")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(ids) != 3 || ids[0] != 1 || ids[2] != 3 {
		t.Fatalf("ids: got %v", ids)
	}

	if _, err := parseItemIDs("1,x"); err == nil {
		t.Fatal("expected invalid id to fail")
	}
	if _, err := parseItemIDs(" , "); err == nil {
		t.Fatal("expected empty list to fail")
	}
}

func TestApplyGlobalFlags(t *testing.T) {
	orig := rpcEndpoint
	defer func() { rpcEndpoint = orig }()

	args, err := applyGlobalFlags([]string{"--rpc", "http://node:8080", "total"})
	if err != nil {
		t.Fatalf("flags: %v", err)
	}
	if rpcEndpoint != "http://node:8080" {
		t.Fatalf("endpoint: got %q", rpcEndpoint)
	}
	if len(args) != 1 || args[0] != "total" {
		t.Fatalf("remaining args: got %v", args)
	}

	if _, err := applyGlobalFlags([]string{"--rpc"}); err == nil {
		t.Fatal("expected missing value to fail")
	}
}
