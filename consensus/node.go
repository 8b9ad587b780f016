// Package consensus implements C10: Raft-style leader election and log
// replication over a fixed, in-process set of nodes. There is no
// network — a Cluster drives every node's message handlers
// directly, the same way original_source's simulation harness does,
// so the protocol's safety properties can be exercised deterministically
// under the kernel's logical clock.
package consensus

import "github.com/armper/PandaGen-sub001/domain"

// NodeState is one of the three Raft roles.
type NodeState int

const (
	Follower NodeState = iota
	Candidate
	Leader
)

func (s NodeState) String() string {
	switch s {
	case Follower:
		return "Follower"
	case Candidate:
		return "Candidate"
	case Leader:
		return "Leader"
	default:
		return "Unknown"
	}
}

// LogEntry is one replicated record. Index is 1-based: the first
// entry ever appended to a log has Index 1, never 0 — 0 is reserved
// to mean "no entry" (an empty log's LastLogIndex).
type LogEntry struct {
	Term        uint64
	Index       uint64
	Payload     []byte
	TimestampNs uint64
}

type VoteRequest struct {
	Term         uint64
	CandidateId  domain.ConsensusNodeId
	LastLogIndex uint64
	LastLogTerm  uint64
}

type VoteResponse struct {
	Term        uint64
	VoteGranted bool
}

type AppendEntriesRequest struct {
	Term         uint64
	LeaderId     domain.ConsensusNodeId
	PrevLogIndex uint64
	PrevLogTerm  uint64
	Entries      []LogEntry
	LeaderCommit uint64
}

type AppendEntriesResponse struct {
	Term       uint64
	Success    bool
	MatchIndex uint64
}

// Node is one replica's local Raft state. Entries are indexed 1-based
// throughout: Log[i-1] holds the entry with Index i.
type Node struct {
	Id          domain.ConsensusNodeId
	State       NodeState
	CurrentTerm uint64
	VotedFor    *domain.ConsensusNodeId
	Log         []LogEntry
	CommitIndex uint64
	LastApplied uint64
}

func NewNode(id domain.ConsensusNodeId) *Node {
	return &Node{Id: id, State: Follower}
}

// LastLogIndex is 0 for an empty log, matching the sentinel used by
// PrevLogIndex to mean "replicate from the beginning".
func (n *Node) LastLogIndex() uint64 {
	if len(n.Log) == 0 {
		return 0
	}
	return n.Log[len(n.Log)-1].Index
}

func (n *Node) LastLogTerm() uint64 {
	if len(n.Log) == 0 {
		return 0
	}
	return n.Log[len(n.Log)-1].Term
}

// BecomeCandidate starts a new election term and votes for itself.
func (n *Node) BecomeCandidate() VoteRequest {
	n.State = Candidate
	n.CurrentTerm++
	self := n.Id
	n.VotedFor = &self
	return VoteRequest{
		Term:         n.CurrentTerm,
		CandidateId:  n.Id,
		LastLogIndex: n.LastLogIndex(),
		LastLogTerm:  n.LastLogTerm(),
	}
}

func (n *Node) BecomeLeader() {
	n.State = Leader
}

// HandleRequestVote applies Raft's vote-granting rule: a term bump
// resets VotedFor, and a vote is only granted to a candidate whose
// log is at least as up to date as this node's.
func (n *Node) HandleRequestVote(req VoteRequest) VoteResponse {
	if req.Term < n.CurrentTerm {
		return VoteResponse{Term: n.CurrentTerm, VoteGranted: false}
	}

	if req.Term > n.CurrentTerm {
		n.CurrentTerm = req.Term
		n.VotedFor = nil
		n.State = Follower
	}

	upToDate := req.LastLogTerm > n.LastLogTerm() ||
		(req.LastLogTerm == n.LastLogTerm() && req.LastLogIndex >= n.LastLogIndex())

	canVote := n.VotedFor == nil || *n.VotedFor == req.CandidateId
	granted := canVote && upToDate
	if granted {
		candidate := req.CandidateId
		n.VotedFor = &candidate
	}

	return VoteResponse{Term: n.CurrentTerm, VoteGranted: granted}
}

// HandleAppendEntries applies the log-matching check at PrevLogIndex,
// then reconciles each incoming entry: a conflicting term truncates
// the suffix before appending, a missing entry is simply appended.
func (n *Node) HandleAppendEntries(req AppendEntriesRequest) AppendEntriesResponse {
	if req.Term < n.CurrentTerm {
		return AppendEntriesResponse{Term: n.CurrentTerm, Success: false, MatchIndex: n.LastLogIndex()}
	}

	if req.Term > n.CurrentTerm {
		n.CurrentTerm = req.Term
		n.VotedFor = nil
	}
	n.State = Follower

	if req.PrevLogIndex > 0 {
		idx := int(req.PrevLogIndex - 1)
		if idx >= len(n.Log) || n.Log[idx].Term != req.PrevLogTerm {
			return AppendEntriesResponse{Term: n.CurrentTerm, Success: false, MatchIndex: n.LastLogIndex()}
		}
	}

	for _, entry := range req.Entries {
		idx := int(entry.Index - 1)
		if idx < len(n.Log) {
			if n.Log[idx].Term != entry.Term {
				n.Log = append(n.Log[:idx], entry)
			}
		} else {
			n.Log = append(n.Log, entry)
		}
	}

	if req.LeaderCommit > n.CommitIndex {
		n.CommitIndex = min(n.LastLogIndex(), req.LeaderCommit)
	}

	return AppendEntriesResponse{Term: n.CurrentTerm, Success: true, MatchIndex: n.LastLogIndex()}
}
