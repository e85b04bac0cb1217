//go:build linux

package tcpinfo

import (
	"testing"
	"time"
)

func TestRawTCPInfoToInfo(t *testing.T) {
	tests := []struct {
		name string
		raw  RawTCPInfo
		want Info
	}{
		{
			name: "established",
			raw: RawTCPInfo{
				State:         1,
				Retransmits:   0,
				RTT:           1500,
				RTTVar:        200,
				TotalRetrans:  0,
				BytesAcked:    1024,
				BytesReceived: 2048,
			},
			want: Info{
				State:         "ESTABLISHED",
				RTT:           1500 * time.Microsecond,
				RTTVar:        200 * time.Microsecond,
				BytesAcked:    1024,
				BytesReceived: 2048,
			},
		},
		{
			name: "unknown state",
			raw:  RawTCPInfo{State: 99},
			want: Info{State: "UNKNOWN"},
		},
		{
			name: "with retransmits",
			raw:  RawTCPInfo{State: 6, Retransmits: 3, TotalRetrans: 7},
			want: Info{State: "TIME_WAIT", Retransmits: 3, TotalRetrans: 7},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.raw.toInfo()
			if *got != tt.want {
				t.Errorf("toInfo() = %+v, want %+v", *got, tt.want)
			}
		})
	}
}

func TestSupported(t *testing.T) {
	if !Supported() {
		t.Error("Supported() = false, want true on linux")
	}
}
