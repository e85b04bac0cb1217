// Package tcpinfo retrieves TCP_INFO statistics for an outbound relay socket.
//
// Only a handful of fields are kept (state, retransmit counts, RTT and its
// variance, bytes acked and received), for the relay's retransmit warnings
// and the Prometheus collector; the kernel exposes dozens more but nothing
// in this repo consumes them.
package tcpinfo

import (
	"encoding/json"
	"time"
)

// Info is the platform-independent view of a socket's TCP_INFO snapshot.
type Info struct {
	State        string        `json:"state"`
	Retransmits  uint8         `json:"retransmits"`
	TotalRetrans uint32        `json:"totalRetrans"`
	RTT          time.Duration `json:"rtt"`
	RTTVar       time.Duration `json:"rttVar"`
	BytesAcked   uint64        `json:"bytesAcked"`
	BytesReceived uint64       `json:"bytesReceived"`
}

func (i *Info) MarshalJSON() ([]byte, error) {
	raw := map[string]any{
		"state":         i.State,
		"retransmits":   i.Retransmits,
		"totalRetrans":  i.TotalRetrans,
		"rtt":           i.RTT.String(),
		"rttVar":        i.RTTVar.String(),
		"bytesAcked":    i.BytesAcked,
		"bytesReceived": i.BytesReceived,
	}
	return json.Marshal(raw)
}
