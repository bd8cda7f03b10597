package main

import (
	"testing"

	v1 "statuspulse/services/v1"
)

func TestEnqueueParams(t *testing.T) {
	t.Cleanup(func() {
		cleanupServiceID = 0
		cleanupServiceSlug = ""
	})

	params, err := enqueueParams("cleanup")
	if err != nil || len(params) != 0 {
		t.Fatalf("unscoped cleanup: %v %v", params, err)
	}

	cleanupServiceID = 42
	params, err = enqueueParams("cleanup")
	if err != nil {
		t.Fatal(err)
	}
	if params[v1.ParamServiceID] != "42" {
		t.Errorf("expected serviceId 42, got %v", params)
	}

	if _, err := enqueueParams("poll"); err == nil {
		t.Error("scope flags should be rejected for poll")
	}
}

func TestEnqueueTargets(t *testing.T) {
	for _, name := range []string{"poll", "audit", "cleanup"} {
		target, ok := enqueueTargets[name]
		if !ok || target.job == "" || target.queue == "" {
			t.Errorf("missing target for %s", name)
		}
	}
}
