package soa

import (
	"context"
	"github.com/skybi/soa-bridge/internal/envelope"
	"github.com/skybi/soa-bridge/internal/jsonvalue"
	"github.com/skybi/soa-bridge/internal/session"
)

// SessionInfo describes the server-side state of a session
type SessionInfo struct {
	ServerVersion string                     `json:"server_version"`
	TransientDir  string                     `json:"transient_volume_directory"`
	User          *envelope.ObjectRef        `json:"user"`
	Group         *envelope.ObjectRef        `json:"group"`
	Role          *envelope.ObjectRef        `json:"role"`
	ExtraInfo     map[string]jsonvalue.Value `json:"extra_info"`
}

type sessionInfoResponse struct {
	envelope.Response
	ServerVersion       string                     `json:"serverVersion"`
	TransientVolRootDir string                     `json:"transientVolRootDir"`
	User                *envelope.ObjectRef        `json:"user"`
	Group               *envelope.ObjectRef        `json:"group"`
	Role                *envelope.ObjectRef        `json:"role"`
	ExtraInfo           map[string]jsonvalue.Value `json:"extraInfo"`
}

// GetSessionInfo retrieves the server-side state of a session
func (client *Client) GetSessionInfo(ctx context.Context, ses *session.Session) (*SessionInfo, error) {
	response, err := call[sessionInfoResponse](ctx, client, ses, EndpointSessionInfo, struct{}{}, nil)
	if err != nil {
		return nil, err
	}

	extra := response.ExtraInfo
	if extra == nil {
		extra = map[string]jsonvalue.Value{}
	}
	return &SessionInfo{
		ServerVersion: response.ServerVersion,
		TransientDir:  response.TransientVolRootDir,
		User:          response.User,
		Group:         response.Group,
		Role:          response.Role,
		ExtraInfo:     extra,
	}, nil
}
