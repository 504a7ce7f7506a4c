package models

type ApprovalStatus string

const (
	StatusPending    ApprovalStatus = "pending"
	StatusApproved   ApprovalStatus = "approved"
	StatusRejected   ApprovalStatus = "rejected"
	StatusNew        ApprovalStatus = "new"
	StatusInProgress ApprovalStatus = "in_progress"
	StatusCompleted  ApprovalStatus = "completed"
	StatusCancelled  ApprovalStatus = "cancelled"
)

var statusHumanName = map[ApprovalStatus]string{
	StatusPending:    "На рассмотрении",
	StatusApproved:   "Одобрено",
	StatusRejected:   "Отклонено",
	StatusNew:        "Новая",
	StatusInProgress: "В работе",
	StatusCompleted:  "Выполнена",
	StatusCancelled:  "Отменена",
}

func (s ApprovalStatus) ToHuman() string {
	if human, exist := statusHumanName[s]; exist {
		return human
	}
	return string(s)
}

func (s ApprovalStatus) IsValid() bool {
	_, ok := statusHumanName[s]
	return ok
}

type UploadSessionStatus string

const (
	UploadStatusUploading UploadSessionStatus = "uploading"
	UploadStatusCompleted UploadSessionStatus = "completed"
	UploadStatusFailed    UploadSessionStatus = "failed"
	UploadStatusExpired   UploadSessionStatus = "expired"
)

func (s UploadSessionStatus) IsFinal() bool {
	return s != UploadStatusUploading
}
