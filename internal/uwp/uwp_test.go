package uwp

import "testing"

func TestIsPackaged(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{`C:\Program Files\WindowsApps\Vendor.App_1.0\app.exe`, true},
		{`c:\program files\windowsapps\Vendor.App_1.0\app.exe`, true},
		{`C:\Program Files\App\app.exe`, false},
		{``, false},
	}
	for _, tt := range tests {
		if got := IsPackaged(tt.path); got != tt.want {
			t.Fatalf("IsPackaged(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestTableResolver(t *testing.T) {
	r := NewTableResolver(map[string]string{
		`C:\Program Files\WindowsApps\Vendor.App_1.0\app.exe`: `shell:AppsFolder\Vendor.App_abc!App`,
	})

	launch, ok := r.LaunchPath(`c:\program files\windowsapps\vendor.app_1.0\app.exe`)
	if !ok {
		t.Fatalf("expected mapping")
	}
	if launch != `shell:AppsFolder\Vendor.App_abc!App` {
		t.Fatalf("unexpected launch path %q", launch)
	}

	if _, ok := r.LaunchPath(`C:\other.exe`); ok {
		t.Fatalf("expected no mapping")
	}
}
