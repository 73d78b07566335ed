package resources

// DownloadState is the state of a download task.
type DownloadState string

const (
	DownloadStopped     DownloadState = "stopped"
	DownloadQueued      DownloadState = "queued"
	DownloadStarting    DownloadState = "starting"
	DownloadDownloading DownloadState = "downloading"
	DownloadStopping    DownloadState = "stopping"
	DownloadError       DownloadState = "error"
	DownloadDone        DownloadState = "done"
	DownloadChecking    DownloadState = "checking"
	DownloadRepairing   DownloadState = "repairing"
	DownloadExtracting  DownloadState = "extracting"
	DownloadSeeding     DownloadState = "seeding"
	DownloadRetry       DownloadState = "retry"
)

// DownloadStates lists every task state in the order the box documents them.
func DownloadStates() []DownloadState {
	return []DownloadState{
		DownloadStopped, DownloadQueued, DownloadStarting, DownloadDownloading,
		DownloadStopping, DownloadError, DownloadDone, DownloadChecking,
		DownloadRepairing, DownloadExtracting, DownloadSeeding, DownloadRetry,
	}
}

// FilePriority is the download priority of a file inside a task.
type FilePriority string

const (
	FilePriorityNoDownload FilePriority = "no_dl"
	FilePriorityLow        FilePriority = "low"
	FilePriorityNormal     FilePriority = "normal"
	FilePriorityHigh       FilePriority = "high"
)

// FilePriorities lists the priorities from lowest to highest.
func FilePriorities() []FilePriority {
	return []FilePriority{FilePriorityNoDownload, FilePriorityLow, FilePriorityNormal, FilePriorityHigh}
}

// FileStatus is the state of a file inside a task.
type FileStatus string

const (
	FileQueued      FileStatus = "queued"
	FileError       FileStatus = "error"
	FileDone        FileStatus = "done"
	FileDownloading FileStatus = "downloading"
)

// FileStatuses lists every file state.
func FileStatuses() []FileStatus {
	return []FileStatus{FileQueued, FileError, FileDone, FileDownloading}
}

// DownloadTask is a download as listed by the box.
type DownloadTask struct {
	ID              int           `json:"id"`
	Type            string        `json:"type"`
	Name            string        `json:"name"`
	Status          DownloadState `json:"status"`
	Size            int64         `json:"size"`
	QueuePos        int           `json:"queue_pos"`
	IOPriority      string        `json:"io_priority"`
	TxBytes         int64         `json:"tx_bytes"`
	RxBytes         int64         `json:"rx_bytes"`
	TxRate          int64         `json:"tx_rate"`
	RxRate          int64         `json:"rx_rate"`
	TxPct           int           `json:"tx_pct"`
	RxPct           int           `json:"rx_pct"`
	Error           string        `json:"error"`
	CreatedTS       int64         `json:"created_ts"`
	ETA             int64         `json:"eta"`
	DownloadDir     string        `json:"download_dir"`
	StopRatio       int           `json:"stop_ratio"`
	ArchivePassword string        `json:"archive_password,omitempty"`
	InfoHash        string        `json:"info_hash,omitempty"`
	PieceLength     int64         `json:"piece_length,omitempty"`
}

// DownloadURL is the payload of an add-by-URL request. DownloadURLList
// holds several URLs separated by newlines.
type DownloadURL struct {
	DownloadURL     string `json:"download_url,omitempty"`
	DownloadURLList string `json:"download_url_list,omitempty"`
	Username        string `json:"username,omitempty"`
	Password        string `json:"password,omitempty"`
	Recursive       bool   `json:"recursive"`
	DownloadDir     string `json:"download_dir,omitempty"`
}

// DefaultDownloadURL returns an empty add-by-URL payload.
func DefaultDownloadURL() DownloadURL {
	return DownloadURL{Recursive: false}
}

// DownloadFile is the payload of an add-by-file request.
type DownloadFile struct {
	DownloadFile    string `json:"download_file"`
	DownloadDir     string `json:"download_dir,omitempty"`
	ArchivePassword string `json:"archive_password,omitempty"`
}

// AddedDownload is the answer to an add request.
type AddedDownload struct {
	ID int `json:"id"`
}

// DownloadUpdate changes a task.
type DownloadUpdate struct {
	IOPriority string        `json:"io_priority,omitempty"`
	Status     DownloadState `json:"status,omitempty"`
}

// DefaultDownloadUpdate returns an update that stops the task.
func DefaultDownloadUpdate() DownloadUpdate {
	return DownloadUpdate{Status: DownloadStopped}
}

// DownloadRatio sets the seeding ratio of a task.
type DownloadRatio struct {
	Ratio float64 `json:"ratio"`
}

// DefaultDownloadRatio returns a zero ratio.
func DefaultDownloadRatio() DownloadRatio {
	return DownloadRatio{}
}

// DownloadFileInfo is a file inside a task.
type DownloadFileInfo struct {
	ID       string       `json:"id"`
	TaskID   int          `json:"task_id"`
	Name     string       `json:"name"`
	Path     string       `json:"path"`
	Filepath string       `json:"filepath"`
	Mimetype string       `json:"mimetype"`
	Size     int64        `json:"size"`
	Rx       int64        `json:"rx"`
	Status   FileStatus   `json:"status"`
	Priority FilePriority `json:"priority"`
	Error    string       `json:"error"`
}

// FileUpdate changes the priority of a file.
type FileUpdate struct {
	Priority FilePriority `json:"priority"`
}

// Tracker is a BitTorrent tracker of a task.
type Tracker struct {
	Announce    string `json:"announce"`
	IsBackup    bool   `json:"is_backup"`
	Status      string `json:"status"`
	Interval    int    `json:"interval"`
	MinInterval int    `json:"min_interval"`
	Reannounce  int    `json:"reannounce"`
	Seeders     int    `json:"nseeders"`
	Leechers    int    `json:"nleechers"`
}

// NewTracker adds a tracker to a task.
type NewTracker struct {
	Announce string `json:"announce"`
}

// DefaultNewTracker returns an empty tracker payload.
func DefaultNewTracker() NewTracker {
	return NewTracker{}
}

// BlacklistEntry bans a peer host.
type BlacklistEntry struct {
	Host   string `json:"host"`
	Expire int    `json:"expire"`
}

// DefaultBlacklistEntry returns an empty blacklist payload.
func DefaultBlacklistEntry() BlacklistEntry {
	return BlacklistEntry{}
}

// RSSFeed creates a feed.
type RSSFeed struct {
	URL string `json:"url"`
}

// DefaultRSSFeed returns an empty feed payload.
func DefaultRSSFeed() RSSFeed {
	return RSSFeed{}
}

// Feed is an RSS download feed.
type Feed struct {
	ID           int    `json:"id"`
	Status       string `json:"status"`
	Error        string `json:"error"`
	NbUnread     int    `json:"nb_rss_items_unread"`
	NbItems      int    `json:"nb_rss_items"`
	FetchTS      int64  `json:"fetch_ts"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Link         string `json:"link"`
	Desc         string `json:"desc"`
	ImageURL     string `json:"image_url"`
	ImageLink    string `json:"image_link"`
	AutoDownload bool   `json:"auto_download"`
}

// FeedItem is an entry of a feed.
type FeedItem struct {
	ID           string `json:"id"`
	FeedID       int    `json:"feed_id"`
	Title        string `json:"title"`
	Link         string `json:"link"`
	Desc         string `json:"desc"`
	Author       string `json:"author"`
	PubDate      int64  `json:"pub_date"`
	EnclosureURL string `json:"enclosure_url"`
	IsRead       bool   `json:"is_read"`
	IsDownloaded bool   `json:"is_downloaded"`
}

// MarkItemAsRead updates the read flag of a feed item.
type MarkItemAsRead struct {
	IsRead bool `json:"is_read"`
}

// DefaultMarkItemAsRead marks an item read.
func DefaultMarkItemAsRead() MarkItemAsRead {
	return MarkItemAsRead{IsRead: true}
}
