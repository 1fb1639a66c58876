package models

import (
	"strconv"
	"time"
)

// IndexStatus is the outcome of ingesting an uploaded law.
type IndexStatus string

const (
	IndexPending     IndexStatus = "pending"
	IndexIndexed     IndexStatus = "indexed"
	IndexNotFound    IndexStatus = "not_found"
	IndexEmptyCorpus IndexStatus = "empty_corpus"
	IndexFailed      IndexStatus = "failed"
)

// DocumentMeta records an uploaded law file and what ingestion made of it.
type DocumentMeta struct {
	ID              uint        `gorm:"primaryKey" json:"id"`
	Title           string      `gorm:"not null;size:255" json:"title"`
	FilePath        string      `gorm:"not null;size:1024" json:"file_path"`
	UploadedByID    uint        `gorm:"index" json:"uploaded_by"`
	SegmentsIndexed int         `json:"segments_indexed"`
	IndexStatus     IndexStatus `gorm:"type:varchar(20);default:'pending'" json:"index_status"`
	UploadedAt      time.Time   `gorm:"autoCreateTime" json:"uploaded_at"`
}

// DocumentIDString is the identifier used as segment id prefix in the vector index.
func (d *DocumentMeta) DocumentIDString() string {
	return strconv.FormatUint(uint64(d.ID), 10)
}

// DocumentIndexedEvent is published after every ingestion attempt.
type DocumentIndexedEvent struct {
	DocumentID      uint        `json:"document_id"`
	Title           string      `json:"title"`
	Status          IndexStatus `json:"status"`
	SegmentsIndexed int         `json:"segments_indexed"`
	UploadedBy      uint        `json:"uploaded_by"`
	OccurredAt      time.Time   `json:"occurred_at"`
}
