package session

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"portalbot/internal/constants"
)

func TestSessionState(t *testing.T) {
	sm := NewSessionManager()
	assert.Equal(t, constants.STATE_IDLE, sm.GetState(1))

	sm.SetState(1, constants.STATE_ADDING_GROUP_NAME)
	assert.Equal(t, constants.STATE_ADDING_GROUP_NAME, sm.GetState(1))
	assert.Equal(t, constants.STATE_IDLE, sm.GetState(2), "states are per chat")

	sm.ClearState(1)
	assert.Equal(t, constants.STATE_IDLE, sm.GetState(1))
}

func TestSessionTempAdminAndReset(t *testing.T) {
	sm := NewSessionManager()
	assert.Equal(t, TempAdminData{}, sm.GetTempAdmin(1))

	sm.SetState(1, constants.STATE_ADDING_GROUP_REF)
	sm.UpdateTempAdmin(1, TempAdminData{PendingGroupName: "News", CurrentMessageID: 10})
	assert.Equal(t, "News", sm.GetTempAdmin(1).PendingGroupName)

	sm.Reset(1)
	assert.Equal(t, constants.STATE_IDLE, sm.GetState(1))
	assert.Equal(t, TempAdminData{}, sm.GetTempAdmin(1))
}

func TestSessionConcurrentAccess(t *testing.T) {
	sm := NewSessionManager()
	var wg sync.WaitGroup
	for i := int64(0); i < 20; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			sm.SetState(id, constants.STATE_EDITING_WELCOME)
			sm.UpdateTempAdmin(id, TempAdminData{CurrentMessageID: int(id)})
			_ = sm.GetState(id)
			sm.Reset(id)
		}(i)
	}
	wg.Wait()
	for i := int64(0); i < 20; i++ {
		assert.Equal(t, constants.STATE_IDLE, sm.GetState(i))
	}
}
