package session

import (
	"sync"

	"portalbot/internal/constants"
	"portalbot/internal/logger"
)

// SessionManager управляет состояниями диалогов и временными данными по chatID.
// SessionManager manages dialogue states and temporary data per chatID.
type SessionManager struct {
	userStates     map[int64]string // Ключ: chatID, Значение: текущее состояние (например, constants.STATE_ADDING_GROUP_NAME)
	userStateMutex sync.RWMutex

	tempAdmin      map[int64]TempAdminData
	tempAdminMutex sync.RWMutex
}

// NewSessionManager создает и возвращает новый экземпляр SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		userStates: make(map[int64]string),
		tempAdmin:  make(map[int64]TempAdminData),
	}
}

// --- Управление состоянием пользователя (User State) ---

// GetState возвращает текущее состояние. Если состояние не установлено, возвращает STATE_IDLE.
func (sm *SessionManager) GetState(chatID int64) string {
	sm.userStateMutex.RLock()
	defer sm.userStateMutex.RUnlock()
	state, ok := sm.userStates[chatID]
	if !ok {
		return constants.STATE_IDLE
	}
	return state
}

// SetState устанавливает новое состояние.
func (sm *SessionManager) SetState(chatID int64, state string) {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()
	sm.userStates[chatID] = state
	logger.Get().Debugf("SessionManager.SetState: состояние для chatID %d установлено: %s", chatID, state)
}

// ClearState сбрасывает состояние к STATE_IDLE.
func (sm *SessionManager) ClearState(chatID int64) {
	sm.userStateMutex.Lock()
	defer sm.userStateMutex.Unlock()
	delete(sm.userStates, chatID)
}

// --- Временные данные администратора (Temp Admin Data) ---

// GetTempAdmin возвращает копию временных данных (пустую, если их нет).
func (sm *SessionManager) GetTempAdmin(chatID int64) TempAdminData {
	sm.tempAdminMutex.RLock()
	defer sm.tempAdminMutex.RUnlock()
	return sm.tempAdmin[chatID]
}

// UpdateTempAdmin сохраняет временные данные.
func (sm *SessionManager) UpdateTempAdmin(chatID int64, data TempAdminData) {
	sm.tempAdminMutex.Lock()
	defer sm.tempAdminMutex.Unlock()
	sm.tempAdmin[chatID] = data
}

// ClearTempAdmin удаляет временные данные.
func (sm *SessionManager) ClearTempAdmin(chatID int64) {
	sm.tempAdminMutex.Lock()
	defer sm.tempAdminMutex.Unlock()
	delete(sm.tempAdmin, chatID)
}

// Reset очищает состояние и временные данные (команда /cancel).
func (sm *SessionManager) Reset(chatID int64) {
	sm.ClearState(chatID)
	sm.ClearTempAdmin(chatID)
	logger.Get().Debugf("SessionManager.Reset: сессия chatID %d очищена.", chatID)
}
