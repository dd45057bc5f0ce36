package mcproto

import (
	"encoding/json"
	"fmt"
)

// StatusVersion is the "version" object of a status response.
type StatusVersion struct {
	Name     string `json:"name"`
	Protocol int    `json:"protocol"`
}

// PlayerSample is one entry of the "players.sample" array.
type PlayerSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// StatusPlayers is the "players" object of a status response.
type StatusPlayers struct {
	Max    uint32         `json:"max"`
	Online uint32         `json:"online"`
	Sample []PlayerSample `json:"sample,omitempty"`
}

// StatusDescription is the "description" object of a status response.
// Some servers use a bare string instead of {"text": ...}; UnmarshalJSON
// accepts both.
type StatusDescription struct {
	Text string `json:"text"`
}

func (d *StatusDescription) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		d.Text = s
		return nil
	}
	type alias StatusDescription
	var a alias
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	*d = StatusDescription(a)
	return nil
}

// StatusResponse is the decoded JSON body of a status-response packet.
// Unknown fields are ignored; only Players.Online is semantically consumed
// by the supervisor (spec.md §6), the rest is carried for observability.
type StatusResponse struct {
	Version            StatusVersion     `json:"version"`
	Players            StatusPlayers     `json:"players"`
	Description        StatusDescription `json:"description"`
	Favicon            string            `json:"favicon,omitempty"`
	EnforcesSecureChat bool              `json:"enforcesSecureChat"`
	PreviewsChat       bool              `json:"previewsChat"`
}

// ParseStatusResponse is the incremental status-response parser. Callers
// feed it an ever-growing accumulator buffer (built from successive TCP
// reads) and interpret the result:
//
//   - err == nil: consumed bytes may be discarded from the front of buf;
//     resp holds the decoded status.
//   - errors.Is(err, ErrIncomplete): read more bytes and call again with the
//     same buffer (nothing consumed yet, nothing to discard).
//   - errors.Is(err, ErrMalformed): fatal for this probe.
//
// Splitting a given full status-response byte stream into any sequence of
// chunks and feeding each accumulated prefix through this function yields at
// most one non-Incomplete result, identical to parsing the full buffer in
// one call.
func ParseStatusResponse(buf []byte) (consumed int, resp StatusResponse, err error) {
	n, id, data, err := ReadPacket(buf)
	if err != nil {
		return 0, StatusResponse{}, err
	}
	if id != 0x00 {
		return 0, StatusResponse{}, fmt.Errorf("%w: unexpected status packet id %d", ErrMalformed, id)
	}

	_, jsonStr, err := ReadString(data)
	if err != nil {
		// data is already the full, buffered packet body (ReadPacket only
		// succeeds once the whole envelope is present), so a short string
		// here means the declared length lied: malformed, not incomplete.
		if err == ErrIncomplete {
			return 0, StatusResponse{}, fmt.Errorf("%w: status string shorter than declared", ErrMalformed)
		}
		return 0, StatusResponse{}, err
	}

	var out StatusResponse
	if jsonErr := json.Unmarshal([]byte(jsonStr), &out); jsonErr != nil {
		return 0, StatusResponse{}, fmt.Errorf("%w: invalid status json: %v", ErrMalformed, jsonErr)
	}

	return n, out, nil
}
