// Copyright 2026 The TENEX Authors
// SPDX-License-Identifier: Apache-2.0

package nostr

// Event kinds consumed or produced by the TENEX client core.
const (
	// KindProfile is user profile metadata (NIP-01 kind 0).
	KindProfile uint16 = 0

	// KindText is a text event: a conversation root (no e-tag) or a
	// reply (e-tag present).
	KindText uint16 = 1

	// KindDeletion is an explicit delete request (NIP-09).
	KindDeletion uint16 = 5

	// KindReaction is a NIP-25 reaction, consumed for team social
	// metrics only.
	KindReaction uint16 = 7

	// KindConversationMetadata carries a conversation's title, status
	// label, current activity, and summary. Latest per thread wins.
	KindConversationMetadata uint16 = 513

	// KindTeamComment is a NIP-22 comment on a team pack.
	KindTeamComment uint16 = 1111

	// KindLesson is a lesson learned by an agent.
	KindLesson uint16 = 4129

	// KindAgentDefinition defines an agent persona.
	KindAgentDefinition uint16 = 4199

	// KindMCPTool defines an MCP tool consumable by agents.
	KindMCPTool uint16 = 4200

	// KindNudge is a reusable prompt fragment.
	KindNudge uint16 = 4201

	// KindSkill is a reusable skill definition.
	KindSkill uint16 = 4202

	// KindBookmarkList is a user's replaceable bookmark list.
	KindBookmarkList uint16 = 14202

	// KindProjectStatus is the ephemeral per-project status a backend
	// publishes: agents, branches, models, tools.
	KindProjectStatus uint16 = 24010

	// KindOperationsStatus is the ephemeral list of agents currently
	// working on an event.
	KindOperationsStatus uint16 = 24133

	// KindReport is a long-form report/article (NIP-23).
	KindReport uint16 = 30023

	// KindProject is the parameterized-replaceable project definition.
	KindProject uint16 = 31933

	// KindTeamPack is a parameterized-replaceable team pack.
	KindTeamPack uint16 = 34199
)
