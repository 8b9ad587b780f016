package consensus

import (
	"github.com/sirupsen/logrus"

	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernel"
	"github.com/armper/PandaGen-sub001/kernerr"
	"github.com/armper/PandaGen-sub001/kernelfmt"
)

// Event records one election or replication outcome for a cluster,
// queryable through the same AuditLog used by every other subsystem.
type Event struct {
	Kind        string
	NodeId      domain.ConsensusNodeId
	Term        uint64
	LogIndex    uint64
	TimestampNs uint64
}

func (e Event) Timestamp() uint64 { return e.TimestampNs }

// Cluster drives a fixed set of Nodes' message handlers directly —
// there is no network transport, matching original_source's
// in-process simulation of the protocol.
type Cluster struct {
	clock *kernel.Clock
	nodes map[domain.ConsensusNodeId]*Node
	order []domain.ConsensusNodeId
	audit *kernel.AuditLog[Event]
}

func NewCluster(clock *kernel.Clock) *Cluster {
	return &Cluster{
		clock: clock,
		nodes: make(map[domain.ConsensusNodeId]*Node),
		audit: kernel.NewAuditLog[Event](),
	}
}

func (c *Cluster) AuditLog() *kernel.AuditLog[Event] { return c.audit }

func (c *Cluster) AddNode(node *Node) {
	if _, exists := c.nodes[node.Id]; !exists {
		c.order = append(c.order, node.Id)
	}
	c.nodes[node.Id] = node
}

func (c *Cluster) Node(id domain.ConsensusNodeId) (*Node, bool) {
	n, ok := c.nodes[id]
	return n, ok
}

func (c *Cluster) quorum() int {
	return len(c.nodes)/2 + 1
}

// ElectLeader runs one election round: candidateId becomes a
// Candidate, every other node votes, and candidateId becomes Leader
// only if it wins a strict majority (including its own vote).
func (c *Cluster) ElectLeader(candidateId domain.ConsensusNodeId) error {
	candidate, ok := c.nodes[candidateId]
	if !ok {
		return kernerr.NewNodeNotFound(candidateId)
	}
	request := candidate.BecomeCandidate()

	votes := 1
	for _, id := range c.order {
		if id == candidateId {
			continue
		}
		response := c.nodes[id].HandleRequestVote(request)
		if response.VoteGranted {
			votes++
		}
	}

	quorum := c.quorum()
	if votes < quorum {
		c.audit.Record(Event{Kind: "ElectionFailed", NodeId: candidateId, Term: request.Term, TimestampNs: c.clock.NowNanos()})
		logrus.Debugf("consensus: election for %s failed term=%d votes=%d quorum=%d", kernelfmt.Short(candidateId), request.Term, votes, quorum)
		return kernerr.NewQuorumNotReached(votes, quorum)
	}

	candidate.BecomeLeader()
	c.audit.Record(Event{Kind: "LeaderElected", NodeId: candidateId, Term: request.Term, TimestampNs: c.clock.NowNanos()})
	logrus.Debugf("consensus: %s elected leader term=%d", kernelfmt.Short(candidateId), request.Term)
	return nil
}

// ReplicateEntry appends one entry to leaderId's log and replicates it
// to every node, committing only once a strict majority acknowledges.
func (c *Cluster) ReplicateEntry(leaderId domain.ConsensusNodeId, payload []byte) (LogEntry, error) {
	leader, ok := c.nodes[leaderId]
	if !ok {
		return LogEntry{}, kernerr.NewNodeNotFound(leaderId)
	}
	if leader.State != Leader {
		return LogEntry{}, kernerr.NewLeaderRequired(leaderId)
	}

	prevIndex := leader.LastLogIndex()
	prevTerm := leader.LastLogTerm()
	entry := LogEntry{
		Term:        leader.CurrentTerm,
		Index:       prevIndex + 1,
		Payload:     append([]byte(nil), payload...),
		TimestampNs: c.clock.NowNanos(),
	}

	request := AppendEntriesRequest{
		Term:         leader.CurrentTerm,
		LeaderId:     leaderId,
		PrevLogIndex: prevIndex,
		PrevLogTerm:  prevTerm,
		Entries:      []LogEntry{entry},
		LeaderCommit: entry.Index,
	}

	successes := 0
	for _, id := range c.order {
		response := c.nodes[id].HandleAppendEntries(request)
		if response.Success {
			successes++
		}
	}

	quorum := c.quorum()
	if successes < quorum {
		c.audit.Record(Event{Kind: "ReplicationFailed", NodeId: leaderId, Term: entry.Term, LogIndex: entry.Index, TimestampNs: c.clock.NowNanos()})
		return LogEntry{}, kernerr.NewQuorumNotReached(successes, quorum)
	}

	c.audit.Record(Event{Kind: "EntryCommitted", NodeId: leaderId, Term: entry.Term, LogIndex: entry.Index, TimestampNs: c.clock.NowNanos()})
	return entry, nil
}
