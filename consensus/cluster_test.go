package consensus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/armper/PandaGen-sub001/consensus"
	"github.com/armper/PandaGen-sub001/domain"
	"github.com/armper/PandaGen-sub001/kernel"
	"github.com/armper/PandaGen-sub001/kernerr"
)

func TestElectionAndReplication(t *testing.T) {
	clock := kernel.NewClock()
	cluster := consensus.NewCluster(clock)

	nodeA := consensus.NewNode(domain.NewConsensusNodeId())
	nodeB := consensus.NewNode(domain.NewConsensusNodeId())
	nodeC := consensus.NewNode(domain.NewConsensusNodeId())
	leaderId := nodeA.Id

	cluster.AddNode(nodeA)
	cluster.AddNode(nodeB)
	cluster.AddNode(nodeC)

	assert.NoError(t, cluster.ElectLeader(leaderId))

	leader, ok := cluster.Node(leaderId)
	assert.True(t, ok)
	assert.Equal(t, consensus.Leader, leader.State)

	entry, err := cluster.ReplicateEntry(leaderId, []byte("alpha"))
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), entry.Index)

	for _, id := range []domain.ConsensusNodeId{nodeA.Id, nodeB.Id, nodeC.Id} {
		node, _ := cluster.Node(id)
		assert.Len(t, node.Log, 1)
		assert.Equal(t, entry, node.Log[0])
		assert.Equal(t, uint64(1), node.CommitIndex)
	}
}

func TestVoteUpToDateRule(t *testing.T) {
	follower := consensus.NewNode(domain.NewConsensusNodeId())
	follower.CurrentTerm = 2
	follower.Log = append(follower.Log, consensus.LogEntry{Term: 2, Index: 1, Payload: []byte{1}, TimestampNs: 5})

	request := consensus.VoteRequest{
		Term:         2,
		CandidateId:  domain.NewConsensusNodeId(),
		LastLogIndex: 0,
		LastLogTerm:  0,
	}

	response := follower.HandleRequestVote(request)
	assert.False(t, response.VoteGranted)
}

func TestReplicateEntryRequiresLeader(t *testing.T) {
	clock := kernel.NewClock()
	cluster := consensus.NewCluster(clock)
	node := consensus.NewNode(domain.NewConsensusNodeId())
	cluster.AddNode(node)

	_, err := cluster.ReplicateEntry(node.Id, []byte("x"))
	assert.True(t, kernerr.Is(err, kernerr.LeaderRequired))
}

func TestElectLeaderUnknownNode(t *testing.T) {
	clock := kernel.NewClock()
	cluster := consensus.NewCluster(clock)
	err := cluster.ElectLeader(domain.NewConsensusNodeId())
	assert.True(t, kernerr.Is(err, kernerr.NodeNotFound))
}

func TestAppendEntriesLogMatchingRejectsConflict(t *testing.T) {
	node := consensus.NewNode(domain.NewConsensusNodeId())
	leaderId := domain.NewConsensusNodeId()

	first := consensus.AppendEntriesRequest{
		Term:     1,
		LeaderId: leaderId,
		Entries:  []consensus.LogEntry{{Term: 1, Index: 1, Payload: []byte("a")}},
	}
	resp := node.HandleAppendEntries(first)
	assert.True(t, resp.Success)

	conflicting := consensus.AppendEntriesRequest{
		Term:         2,
		LeaderId:     leaderId,
		PrevLogIndex: 1,
		PrevLogTerm:  99,
	}
	resp = node.HandleAppendEntries(conflicting)
	assert.False(t, resp.Success)
}
