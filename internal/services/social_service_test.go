// internal/services/social_service_test.go
package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/beatmarket/internal/models"
)

type SocialTestSuite struct {
	suite.Suite
	f   *fixture
	ctx context.Context
}

func (suite *SocialTestSuite) SetupTest() {
	suite.ctx = context.Background()
	suite.f = newFixture(suite.T())
}

func (suite *SocialTestSuite) TestFriendRequestIsUniquePerPair() {
	social := suite.f.market.Social

	first, err := social.SendFriendRequest(suite.ctx, "seller-1", "buyer-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.FriendStatusPending, first.Status)

	again, err := social.SendFriendRequest(suite.ctx, "seller-1", "buyer-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), first.ID, again.ID)

	reverse, err := social.SendFriendRequest(suite.ctx, "buyer-1", "seller-1")
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), first.ID, reverse.ID)

	assert.Len(suite.T(), social.OutgoingRequests("seller-1"), 1)
	assert.Len(suite.T(), social.IncomingRequests("buyer-1"), 1)
	assert.Len(suite.T(), suite.f.market.Notifications.ListAll("buyer-1"), 1)
}

func (suite *SocialTestSuite) TestFriendRequestValidation() {
	_, err := suite.f.market.Social.SendFriendRequest(suite.ctx, "buyer-1", "buyer-1")
	assert.ErrorIs(suite.T(), err, ErrValidation)

	_, err = suite.f.market.Social.SendFriendRequest(suite.ctx, "buyer-1", "ghost")
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *SocialTestSuite) TestAcceptNotifiesSender() {
	social := suite.f.market.Social
	edge, err := social.SendFriendRequest(suite.ctx, "seller-1", "buyer-1")
	require.NoError(suite.T(), err)

	_, err = social.AcceptFriendRequest(suite.ctx, "seller-1", edge.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden, "the sender cannot accept")
	_, err = social.AcceptFriendRequest(suite.ctx, "seller-2", edge.ID)
	assert.ErrorIs(suite.T(), err, ErrForbidden)

	accepted, err := social.AcceptFriendRequest(suite.ctx, "buyer-1", edge.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.FriendStatusAccepted, accepted.Status)

	assert.Len(suite.T(), social.ListFriends("seller-1"), 1)
	assert.Len(suite.T(), social.ListFriends("buyer-1"), 1)
	assert.Empty(suite.T(), social.IncomingRequests("buyer-1"))
	assert.NotNil(suite.T(), social.FriendshipBetween("buyer-1", "seller-1"))

	notes := suite.f.market.Notifications.ListAll("seller-1")
	require.Len(suite.T(), notes, 1)
	assert.Equal(suite.T(), models.NotificationFriendAccepted, notes[0].Type)
	assert.Equal(suite.T(), "Young Artist accepted your friend request", notes[0].Message)

	// Accepting twice changes nothing.
	again, err := social.AcceptFriendRequest(suite.ctx, "buyer-1", edge.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.FriendStatusAccepted, again.Status)
	assert.Len(suite.T(), suite.f.market.Notifications.ListAll("seller-1"), 1)

	missing, err := social.AcceptFriendRequest(suite.ctx, "buyer-1", "ghost")
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), missing)
}

func (suite *SocialTestSuite) TestRejectRemovesEdgeAndAllowsRetry() {
	social := suite.f.market.Social
	edge, err := social.SendFriendRequest(suite.ctx, "seller-1", "buyer-1")
	require.NoError(suite.T(), err)

	rejected, err := social.RejectFriendRequest(suite.ctx, "buyer-1", edge.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.FriendStatusRejected, rejected.Status)
	assert.Nil(suite.T(), social.FriendshipBetween("seller-1", "buyer-1"))

	notes := suite.f.market.Notifications.ListAll("seller-1")
	require.Len(suite.T(), notes, 1)
	assert.Equal(suite.T(), models.NotificationFriendRejected, notes[0].Type)

	retry, err := social.SendFriendRequest(suite.ctx, "seller-1", "buyer-1")
	require.NoError(suite.T(), err)
	assert.NotEqual(suite.T(), edge.ID, retry.ID)
}

func (suite *SocialTestSuite) TestRemoveFriendEdge() {
	social := suite.f.market.Social
	edge, err := social.SendFriendRequest(suite.ctx, "seller-1", "seller-2")
	require.NoError(suite.T(), err)
	_, err = social.AcceptFriendRequest(suite.ctx, "seller-2", edge.ID)
	require.NoError(suite.T(), err)

	social.RemoveFriendEdge(suite.ctx, edge.ID)
	assert.Empty(suite.T(), social.ListFriends("seller-1"))
	_, err = social.FriendEdge(edge.ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *SocialTestSuite) TestAddCollaboration() {
	beat := suite.f.createBeat(suite.T(), "seller-1", "Joint", 1000, 10)
	social := suite.f.market.Social

	collab, err := social.AddCollaboration(suite.ctx, "seller-1", beat.ID, []string{"seller-2", "ghost", "seller-2"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"seller-1", "seller-2"}, collab.Collaborators)

	invites := suite.f.market.Notifications.ListAll("seller-2")
	require.Len(suite.T(), invites, 1)
	assert.Equal(suite.T(), models.NotificationCollaborationInvite, invites[0].Type)
	assert.Equal(suite.T(), collab.ID, invites[0].RelatedID)
	assert.Contains(suite.T(), invites[0].Message, `"Joint"`)
	assert.Empty(suite.T(), suite.f.market.Notifications.ListAll("seller-1"))

	replaced, err := social.AddCollaboration(suite.ctx, "seller-1", beat.ID, []string{"buyer-1"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), collab.ID, replaced.ID)
	assert.Equal(suite.T(), []string{"seller-1", "buyer-1"}, replaced.Collaborators)

	assert.Equal(suite.T(), []string{beat.ID}, social.CollaborationBeatIDs("buyer-1"))
	assert.Empty(suite.T(), social.CollaborationsFor("seller-2"))

	_, err = social.AddCollaboration(suite.ctx, "seller-1", "ghost", nil)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *SocialTestSuite) TestAdminCollaborationKeepsSeller() {
	beat := suite.f.createBeat(suite.T(), "seller-1", "Handover", 1000, 10)

	collab, err := suite.f.market.Social.AddCollaboration(suite.ctx, "admin-1", beat.ID, []string{"seller-2"})
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), []string{"seller-1", "seller-2"}, collab.Collaborators)
	assert.NotContains(suite.T(), collab.Collaborators, "admin-1")

	for _, id := range []string{"seller-1", "seller-2"} {
		invites := suite.f.market.Notifications.ListAll(id)
		require.Len(suite.T(), invites, 1, id)
		assert.Equal(suite.T(), "admin-1", invites[0].SenderID)
		assert.Equal(suite.T(), collab.ID, invites[0].RelatedID)
	}
	assert.Empty(suite.T(), suite.f.market.Notifications.ListAll("admin-1"))
}

func (suite *SocialTestSuite) TestNotificationsReadState() {
	notifications := suite.f.market.Notifications
	_, err := suite.f.market.Social.SendFriendRequest(suite.ctx, "seller-1", "buyer-1")
	require.NoError(suite.T(), err)
	_, err = suite.f.market.Social.SendFriendRequest(suite.ctx, "seller-2", "buyer-1")
	require.NoError(suite.T(), err)

	assert.Equal(suite.T(), 2, notifications.UnreadCount("buyer-1"))
	all := notifications.ListAll("buyer-1")
	require.Len(suite.T(), all, 2)

	notifications.MarkRead(suite.ctx, all[0].ID)
	assert.Equal(suite.T(), 1, notifications.UnreadCount("buyer-1"))
	assert.Len(suite.T(), notifications.ListUnread("buyer-1"), 1)

	assert.Equal(suite.T(), 1, notifications.MarkAllRead(suite.ctx, "buyer-1"))
	assert.Zero(suite.T(), notifications.UnreadCount("buyer-1"))

	notifications.Delete(suite.ctx, all[1].ID)
	assert.Len(suite.T(), notifications.ListAll("buyer-1"), 1)
	_, err = notifications.Get(all[1].ID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *SocialTestSuite) TestNotifyRejectsUnknownType() {
	_, err := suite.f.market.Notifications.Notify(suite.ctx, NotificationRequest{
		UserID: "buyer-1",
		Type:   models.NotificationType("spam"),
	})
	assert.ErrorIs(suite.T(), err, ErrValidation)
}

func (suite *SocialTestSuite) TestSocialSurvivesRestart() {
	edge, err := suite.f.market.Social.SendFriendRequest(suite.ctx, "seller-1", "buyer-1")
	require.NoError(suite.T(), err)

	restarted := newFixtureWith(suite.T(), suite.f.cfg, suite.f.store, suite.f.blobs)
	got, err := restarted.market.Social.FriendEdge(edge.ID)
	require.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.FriendStatusPending, got.Status)
	assert.Equal(suite.T(), 1, restarted.market.Notifications.UnreadCount("buyer-1"))
}

func TestSocialTestSuite(t *testing.T) {
	suite.Run(t, new(SocialTestSuite))
}
