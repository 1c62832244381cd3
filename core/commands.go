// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package core

import (
	"context"
	"errors"
	"time"
)

// Publish confirmation windows. Conversational publishes wait the
// long window; team social actions give up sooner.
const (
	PublishTimeout = 30 * time.Second
	SocialTimeout  = 10 * time.Second
)

var (
	// ErrQueueFull is returned by Enqueue when the publisher is not
	// draining the request channel.
	ErrQueueFull = errors.New("core: command queue full")

	// ErrPublishTimeout is returned by Submit when no confirmation
	// arrived within the command's window. The publish may still
	// land later; local state is left recoverable.
	ErrPublishTimeout = errors.New("core: publish confirmation timed out")
)

// Command is a mutating operation destined for the identity/publisher
// collaborator. The runtime only enqueues commands; signing and the
// wire side happen elsewhere.
type Command interface {
	commandName() string
}

// PublishMessage posts a reply into an existing conversation.
type PublishMessage struct {
	ThreadID    string
	ProjectATag string
	Content     string
	// MentionPubkeys become p-tags on the published note.
	MentionPubkeys []string
}

// PublishThread starts a new conversation in a project.
type PublishThread struct {
	ProjectATag string
	Title       string
	Content     string
	// AgentPubkeys addresses the thread to specific agents.
	AgentPubkeys []string
}

// PublishBookmarkList replaces the user's kind-14202 bookmark list
// with exactly these event ids.
type PublishBookmarkList struct {
	ItemIDs []string
}

// ReactToTeam publishes a kind-7 reaction to a team pack event.
type ReactToTeam struct {
	TeamEventID string
	Content     string
}

// PostTeamComment publishes a kind-1111 comment on a team pack.
type PostTeamComment struct {
	TeamEventID string
	Content     string
}

// CreateNudge publishes a new kind-4201 nudge.
type CreateNudge struct {
	Title   string
	Content string
}

// DeleteNudge publishes a kind-5 deletion for a nudge.
type DeleteNudge struct {
	NudgeID string
}

// CreateAgentDefinition publishes a new kind-4199 agent definition.
type CreateAgentDefinition struct {
	Name         string
	Description  string
	Role         string
	Instructions string
	UseCriteria  []string
}

// DeleteAgentDefinition publishes a kind-5 deletion for an agent
// definition.
type DeleteAgentDefinition struct {
	AgentDefinitionID string
}

// UpdateAgentConfig changes one agent's model/tool configuration in a
// project.
type UpdateAgentConfig struct {
	ProjectATag string
	AgentPubkey string
	Model       string
	Tools       []string
}

// UpdateGlobalAgentConfig changes an agent's configuration across all
// projects it serves.
type UpdateGlobalAgentConfig struct {
	AgentPubkey string
	Model       string
	Tools       []string
}

// DeleteAgent removes an agent from a project.
type DeleteAgent struct {
	ProjectATag string
	AgentPubkey string
}

func (PublishMessage) commandName() string          { return "publish_message" }
func (PublishThread) commandName() string           { return "publish_thread" }
func (PublishBookmarkList) commandName() string     { return "publish_bookmark_list" }
func (ReactToTeam) commandName() string             { return "react_to_team" }
func (PostTeamComment) commandName() string         { return "post_team_comment" }
func (CreateNudge) commandName() string             { return "create_nudge" }
func (DeleteNudge) commandName() string             { return "delete_nudge" }
func (CreateAgentDefinition) commandName() string   { return "create_agent_definition" }
func (DeleteAgentDefinition) commandName() string   { return "delete_agent_definition" }
func (UpdateAgentConfig) commandName() string       { return "update_agent_config" }
func (UpdateGlobalAgentConfig) commandName() string { return "update_global_agent_config" }
func (DeleteAgent) commandName() string             { return "delete_agent" }

// commandTimeout is the confirmation window Submit waits for.
func commandTimeout(cmd Command) time.Duration {
	switch cmd.(type) {
	case ReactToTeam, PostTeamComment:
		return SocialTimeout
	default:
		return PublishTimeout
	}
}

// Request pairs a command with the channel its outcome is reported
// on. The publisher must send exactly one result (nil on success);
// Result is buffered so the send never blocks.
type Request struct {
	Command Command
	Result  chan error
}

// Requests is the channel the publisher collaborator drains.
func (r *Runtime) Requests() <-chan Request { return r.requests }

// Enqueue hands a command to the publisher without waiting for the
// outcome. The returned Request's Result channel reports it.
func (r *Runtime) Enqueue(cmd Command) (Request, error) {
	if !r.started.Load() {
		return Request{}, ErrNotStarted
	}
	req := Request{Command: cmd, Result: make(chan error, 1)}
	select {
	case r.requests <- req:
		return req, nil
	default:
		return Request{}, ErrQueueFull
	}
}

// Submit enqueues a command and waits for its confirmation, up to the
// command's window (30 s for publishes, 10 s for team social
// actions). On timeout the command stays with the publisher and may
// still complete; the caller gets ErrPublishTimeout.
func (r *Runtime) Submit(ctx context.Context, cmd Command) error {
	req, err := r.Enqueue(cmd)
	if err != nil {
		return err
	}
	timer := r.clock.After(commandTimeout(cmd))
	select {
	case err := <-req.Result:
		return err
	case <-timer:
		r.logger.Warn("publish confirmation timed out", "command", cmd.commandName())
		return ErrPublishTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}
