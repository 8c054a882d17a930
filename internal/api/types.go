package api

import (
	"github.com/samcharles93/wasmrev/internal/recovery"
)

// maxPreimages bounds the enumeration behind InvertRequest.All.
const maxPreimages = 64

type InvertRequest struct {
	Key    string `json:"key"`
	Target string `json:"target"`
	Prefix string `json:"prefix,omitempty"`
	Steps  bool   `json:"steps,omitempty"`
	All    bool   `json:"all,omitempty"`
}

type InvertResponse struct {
	recovery.Report
	Preimages []string `json:"preimages,omitempty"`
}

type VerifyRequest struct {
	Key    string `json:"key"`
	Target string `json:"target"`
	Secret string `json:"secret"`
}

type VerifyResponse struct {
	OK    bool   `json:"ok"`
	State string `json:"state"`
}

type DeletedResponse struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Deleted bool   `json:"deleted"`
}
