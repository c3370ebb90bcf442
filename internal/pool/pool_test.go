package pool

import "testing"

func TestGetByteIsZeroed(t *testing.T) {
	b := GetByte(16)
	for i := range b {
		b[i] = 0xFF
	}
	PutByte(b)

	b2 := GetByte(16)
	for i, v := range b2 {
		if v != 0 {
			t.Errorf("byte %d = %v, want 0", i, v)
		}
	}
}

func TestGetInt16Length(t *testing.T) {
	s := GetInt16(100)
	if len(s) != 100 {
		t.Errorf("len = %v, want 100", len(s))
	}
	PutInt16(s)
}

func TestGetFloat32Reuse(t *testing.T) {
	f := GetFloat32(8)
	f[0] = 3.14
	PutFloat32(f)

	f2 := GetFloat32(8)
	if f2[0] != 0 {
		t.Errorf("f2[0] = %v, want 0 (zeroed on reuse)", f2[0])
	}
}

func TestClearResetsPools(t *testing.T) {
	b := GetByte(4)
	PutByte(b)
	Clear()
	// After Clear, a fresh Get must still work without panicking.
	b2 := GetByte(4)
	if len(b2) != 4 {
		t.Errorf("len = %v, want 4", len(b2))
	}
}
