package gdt

import "testing"

func TestSelectorsFixedByspec(t *testing.T) {
	cases := map[string]uint16{
		"kcode": SelKernelCode,
		"kdata": SelKernelData,
		"ucode": SelUserCode,
		"udata": SelUserData,
		"tss":   SelTSS,
	}
	want := map[string]uint16{
		"kcode": 0x08, "kdata": 0x10, "ucode": 0x1B, "udata": 0x23, "tss": 0x28,
	}
	for name, got := range cases {
		if got != want[name] {
			t.Errorf("%s selector = %#x, want %#x", name, got, want[name])
		}
	}
}

func TestNewInstallsEsp0(t *testing.T) {
	tbl := New(0xDEADB000)
	if tbl.KernelStack() != 0xDEADB000 {
		t.Fatalf("esp0 = %#x, want 0xDEADB000", tbl.KernelStack())
	}
}

func TestSetKernelStackUpdatesEsp0(t *testing.T) {
	tbl := New(0x1000)
	tbl.SetKernelStack(SelKernelData, 0x2000)
	if tbl.KernelStack() != 0x2000 {
		t.Fatalf("esp0 = %#x, want 0x2000", tbl.KernelStack())
	}
}

func TestNullDescriptorIsZero(t *testing.T) {
	tbl := New(0x1000)
	if tbl.entries[0] != (descriptor{}) {
		t.Fatalf("null descriptor not zero: %+v", tbl.entries[0])
	}
}
