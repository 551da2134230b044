// Файл: internal/session/temp_admin.go
package session

// TempAdminData - временные данные многошагового диалога администратора.
// TempAdminData holds temporary data of a multi-step admin dialogue.
type TempAdminData struct {
	PendingGroupName string // Название группы, введенное на первом шаге добавления
	PendingDeleteID  string // ID группы, ожидающей подтверждения удаления
	CurrentMessageID int    // Сообщение с меню, которое редактируется при навигации
}
