package profile

import "time"

// Profile holds the resume and job-description text used for coaching context.
type Profile struct {
	ResumeText     string    `json:"resumeText"`
	ResumeFilename string    `json:"resumeFilename,omitempty"`
	JobDescription string    `json:"jobDescription"`
	UploadedAt     time.Time `json:"uploadedAt"`
}

// HasResume reports whether resume text was supplied.
func (p Profile) HasResume() bool {
	return p.ResumeText != ""
}
