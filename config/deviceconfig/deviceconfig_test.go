package deviceconfig_test

import (
	"testing"

	"github.com/rcornwell/cdc6000/config/deviceconfig"
)

func TestParseParamsDefaults(t *testing.T) {
	p := deviceconfig.ParseParams("")
	if p.Path != "" || p.Controller != "3555" || p.ANSI {
		t.Fatalf("defaults = %+v, want empty path, 3555, ascii", p)
	}
}

func TestParseParamsFull(t *testing.T) {
	p := deviceconfig.ParseParams("/tmp,3152,ansi")
	if p.Path != "/tmp/" {
		t.Fatalf("path = %q, want trailing separator appended", p.Path)
	}
	if p.Controller != "3152" {
		t.Fatalf("controller = %q, want 3152", p.Controller)
	}
	if !p.ANSI {
		t.Fatalf("ANSI = false, want true")
	}
}

func TestParseParamsPathAlreadySlashed(t *testing.T) {
	p := deviceconfig.ParseParams("/tmp/")
	if p.Path != "/tmp/" {
		t.Fatalf("path = %q, want unchanged /tmp/", p.Path)
	}
}

func TestCreateUnknownModel(t *testing.T) {
	if _, err := deviceconfig.Create("NOSUCHMODEL", 0, 0, ""); err == nil {
		t.Fatalf("Create with unknown model succeeded, want error")
	}
}

// Model self-registration happens in the peripheral packages' init
// functions; this package alone has nothing registered, so a lookup
// of a real model name without importing it must fail.
func TestCreateWithoutImportIsUnregistered(t *testing.T) {
	if _, err := deviceconfig.Create("LP1612", 0, 0, ""); err == nil {
		t.Fatalf("Create(\"LP1612\") succeeded despite printer1612 never being imported")
	}
}
