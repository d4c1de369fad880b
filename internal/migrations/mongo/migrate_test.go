package mongo

import "testing"

func TestCollections(t *testing.T) {
	seen := map[string]bool{}
	for _, def := range Collections() {
		if seen[def.Name] {
			t.Errorf("collection %s defined twice", def.Name)
		}
		seen[def.Name] = true

		if _, ok := def.Validator["$jsonSchema"]; !ok {
			t.Errorf("collection %s has no $jsonSchema validator", def.Name)
		}
	}

	for _, want := range []string{"bookings", "reminders", "services", "users", "customers"} {
		if !seen[want] {
			t.Errorf("missing collection %s", want)
		}
	}
}

func TestBookingsCarrySlotIndex(t *testing.T) {
	for _, def := range Collections() {
		if def.Name != "bookings" {
			continue
		}
		for _, idx := range def.Indexes {
			if idx.Options != nil && idx.Options.Name != nil && *idx.Options.Name == "uniq_active_slot" {
				if idx.Options.Unique == nil || !*idx.Options.Unique {
					t.Error("slot index must be unique")
				}
				return
			}
		}
		t.Fatal("bookings collection lacks the slot index")
	}
}
