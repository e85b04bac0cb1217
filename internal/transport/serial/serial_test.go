package serial

import (
	"testing"

	goserial "github.com/daedaluz/goserial"
)

func TestCflagForBaud(t *testing.T) {
	tests := []struct {
		rate    int
		want    goserial.CFlag
		wantErr bool
	}{
		{rate: 9600, want: goserial.B9600},
		{rate: 115200, want: goserial.B115200},
		{rate: 1234567, wantErr: true},
	}
	for _, tt := range tests {
		got, err := cflagForBaud(tt.rate)
		if tt.wantErr {
			if err == nil {
				t.Errorf("cflagForBaud(%d): want error, got nil", tt.rate)
			}
			continue
		}
		if err != nil {
			t.Errorf("cflagForBaud(%d): unexpected error %v", tt.rate, err)
		}
		if got != tt.want {
			t.Errorf("cflagForBaud(%d) = %v, want %v", tt.rate, got, tt.want)
		}
	}
}

func TestCflagForDataBits(t *testing.T) {
	if got := cflagForDataBits(7); got != goserial.CS7 {
		t.Errorf("cflagForDataBits(7) = %v, want CS7", got)
	}
	if got := cflagForDataBits(0); got != goserial.CS8 {
		t.Errorf("cflagForDataBits(0) = %v, want CS8 default", got)
	}
}
