package constants

import "time"

// Admin Conversation States
// Состояния диалога администратора
const (
	STATE_IDLE                 = "idle"
	STATE_EDITING_WELCOME      = "editing_welcome"
	STATE_AWAITING_MEDIA       = "awaiting_welcome_media"
	STATE_ADDING_GROUP_NAME    = "adding_group_name"
	STATE_ADDING_GROUP_REF     = "adding_group_ref"
	STATE_CONFIRMING_DELETE    = "confirming_delete"
	STATE_CONFIRMING_REF_RESET = "confirming_referral_reset"
)

// Callback Data
// Данные коллбэков inline-кнопок
const (
	CALLBACK_PREFIX_JOIN   = "join_"
	CALLBACK_PREFIX_DELETE = "delete_"

	CALLBACK_ADMIN_EDIT_WELCOME  = "admin_edit_welcome"
	CALLBACK_ADMIN_WELCOME_MEDIA = "admin_welcome_media"
	CALLBACK_ADMIN_CLEAR_MEDIA   = "admin_clear_media"
	CALLBACK_ADMIN_MANAGE_GROUPS = "admin_manage_groups"
	CALLBACK_ADMIN_ADD_GROUP     = "admin_add_group"
	CALLBACK_ADMIN_VIEW_GROUPS   = "admin_view_groups"
	CALLBACK_ADMIN_DELETE_GROUP  = "admin_delete_group"
	CALLBACK_ADMIN_STATS         = "admin_stats"
	CALLBACK_ADMIN_STATS_EXCEL   = "admin_stats_excel"
	CALLBACK_ADMIN_RESET_REFS    = "admin_reset_referrals"
	CALLBACK_ADMIN_BACK          = "admin_back"
	CALLBACK_ADMIN_CLOSE         = "admin_close"

	CALLBACK_CONFIRM_DELETE_YES = "confirm_delete_yes"
	CALLBACK_CONFIRM_DELETE_NO  = "confirm_delete_no"
	CALLBACK_CONFIRM_RESET_YES  = "confirm_reset_yes"
	CALLBACK_CONFIRM_RESET_NO   = "confirm_reset_no"

	CALLBACK_MY_LINK = "my_referral_link"
)

// Destination Modes
// Режимы интерпретации access_ref
const (
	DESTINATION_MODE_LINK = "link" // access_ref - ссылка-приглашение t.me
	DESTINATION_MODE_CHAT = "chat" // access_ref - @username или числовой ID чата
)

// Storage Backends
const (
	STORAGE_BACKEND_FILE     = "file"
	STORAGE_BACKEND_POSTGRES = "postgres"
	STORAGE_BACKEND_REDIS    = "redis"
)

// Deep links
const (
	REFERRAL_PAYLOAD_PREFIX = "ref_"
)

const (
	MAX_DESTINATION_NAME_LEN = 64
	STATS_TOP_LIMIT          = 10
	INVITE_LINK_TTL          = 24 * time.Hour // срок жизни одноразовой ссылки в режиме chat
)
