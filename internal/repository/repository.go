package repository

import "codepad/internal/storage"

type Repositories struct {
	User       UserRepository
	Snapshot   SnapshotRepository
	Submission SubmissionRepository
	Share      ShareRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		User:       NewUserRepository(db),
		Snapshot:   NewSnapshotRepository(db),
		Submission: NewSubmissionRepository(db),
		Share:      NewShareRepository(db),
	}
}
