package resources

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/url"

	"github.com/maksimkurb/fbx-go/src/internal/access"
)

// Download is the download manager API.
type Download struct {
	r access.Requester
}

// NewDownload returns the download module.
func NewDownload(r access.Requester) *Download {
	return &Download{r: r}
}

// Tasks lists the downloads.
func (d *Download) Tasks(ctx context.Context) ([]DownloadTask, error) {
	return access.Decode[[]DownloadTask](d.r.Get(ctx, "downloads/"))
}

// Task returns one download.
func (d *Download) Task(ctx context.Context, id int) (*DownloadTask, error) {
	return access.Decode[*DownloadTask](d.r.Get(ctx, fmt.Sprintf("downloads/%d", id)))
}

// DeleteTask removes a download and keeps its files.
func (d *Download) DeleteTask(ctx context.Context, id int) error {
	return access.Discard(d.r.Delete(ctx, fmt.Sprintf("downloads/%d", id), nil))
}

// EraseTask removes a download and its files.
func (d *Download) EraseTask(ctx context.Context, id int) error {
	return access.Discard(d.r.Delete(ctx, fmt.Sprintf("downloads/%d/erase/", id), nil))
}

// UpdateTask changes the status or priority of a download.
func (d *Download) UpdateTask(ctx context.Context, id int, update DownloadUpdate) (*DownloadTask, error) {
	return access.Decode[*DownloadTask](d.r.Put(ctx, fmt.Sprintf("downloads/%d", id), update))
}

// Log returns the download log.
func (d *Download) Log(ctx context.Context, id int) (string, error) {
	return access.Decode[string](d.r.Get(ctx, fmt.Sprintf("downloads/%d/log/", id)))
}

// AddFromURL starts downloading one or more URLs.
func (d *Download) AddFromURL(ctx context.Context, req DownloadURL) (*AddedDownload, error) {
	return access.Decode[*AddedDownload](d.r.Post(ctx, "downloads/add/", req))
}

// AddFromFile starts a download from an uploaded torrent or nzb file.
func (d *Download) AddFromFile(ctx context.Context, req DownloadFile) (*AddedDownload, error) {
	return access.Decode[*AddedDownload](d.r.Post(ctx, "downloads/add/", req))
}

// Stats returns the download manager statistics.
func (d *Download) Stats(ctx context.Context) (map[string]any, error) {
	return access.Decode[map[string]any](d.r.Get(ctx, "downloads/stats/"))
}

// Files lists the files of a download.
func (d *Download) Files(ctx context.Context, id int) ([]DownloadFileInfo, error) {
	return access.Decode[[]DownloadFileInfo](d.r.Get(ctx, fmt.Sprintf("downloads/%d/files/", id)))
}

// UpdateFile changes the priority of a file.
func (d *Download) UpdateFile(ctx context.Context, id int, fileID string, update FileUpdate) (*DownloadFileInfo, error) {
	return access.Decode[*DownloadFileInfo](d.r.Put(ctx, fmt.Sprintf("downloads/%d/files/%s", id, url.PathEscape(fileID)), update))
}

// Trackers lists the trackers of a torrent.
func (d *Download) Trackers(ctx context.Context, id int) ([]Tracker, error) {
	return access.Decode[[]Tracker](d.r.Get(ctx, fmt.Sprintf("downloads/%d/trackers/", id)))
}

// AddTracker adds a tracker to a torrent.
func (d *Download) AddTracker(ctx context.Context, id int, tracker NewTracker) error {
	return access.Discard(d.r.Post(ctx, fmt.Sprintf("downloads/%d/trackers/", id), tracker))
}

// RemoveTracker removes a tracker from a torrent.
func (d *Download) RemoveTracker(ctx context.Context, id int, announce string, body map[string]any) error {
	return access.Discard(d.r.Delete(ctx, trackerPath(id, announce), body))
}

// UpdateTracker changes a tracker of a torrent.
func (d *Download) UpdateTracker(ctx context.Context, id int, announce string, body map[string]any) error {
	return access.Discard(d.r.Put(ctx, trackerPath(id, announce), body))
}

func trackerPath(id int, announce string) string {
	return fmt.Sprintf("downloads/%d/trackers/%s", id, url.PathEscape(announce))
}

// Peers lists the peers of a torrent.
func (d *Download) Peers(ctx context.Context, id int) ([]map[string]any, error) {
	return access.Decode[[]map[string]any](d.r.Get(ctx, fmt.Sprintf("downloads/%d/peers/", id)))
}

// Pieces returns the piece map of a torrent, one character per piece.
func (d *Download) Pieces(ctx context.Context, id int) (string, error) {
	return access.Decode[string](d.r.Get(ctx, fmt.Sprintf("downloads/%d/pieces/", id)))
}

// Blacklist lists the banned hosts of a torrent.
func (d *Download) Blacklist(ctx context.Context, id int) ([]BlacklistEntry, error) {
	return access.Decode[[]BlacklistEntry](d.r.Get(ctx, fmt.Sprintf("downloads/%d/blacklist/", id)))
}

// EmptyBlacklist clears the banned hosts of a torrent.
func (d *Download) EmptyBlacklist(ctx context.Context, id int) error {
	return access.Discard(d.r.Delete(ctx, fmt.Sprintf("downloads/%d/blacklist/empty/", id), nil))
}

// DeleteBlacklistEntry unbans a host.
func (d *Download) DeleteBlacklistEntry(ctx context.Context, host string) error {
	return access.Discard(d.r.Delete(ctx, "downloads/blacklist/"+url.PathEscape(host), nil))
}

// CreateBlacklistEntry bans a host.
func (d *Download) CreateBlacklistEntry(ctx context.Context, entry BlacklistEntry) (*BlacklistEntry, error) {
	return access.Decode[*BlacklistEntry](d.r.Post(ctx, "downloads/blacklist/", entry))
}

// Feeds lists the RSS feeds.
func (d *Download) Feeds(ctx context.Context) ([]Feed, error) {
	return access.Decode[[]Feed](d.r.Get(ctx, "downloads/feeds/"))
}

// Feed returns one RSS feed.
func (d *Download) Feed(ctx context.Context, feedID int) (*Feed, error) {
	return access.Decode[*Feed](d.r.Get(ctx, fmt.Sprintf("downloads/feeds/%d/", feedID)))
}

// CreateFeed subscribes to an RSS feed.
func (d *Download) CreateFeed(ctx context.Context, rssURL string) (*Feed, error) {
	return access.Decode[*Feed](d.r.Post(ctx, "downloads/feeds/", RSSFeed{URL: rssURL}))
}

// DeleteFeed unsubscribes from a feed.
func (d *Download) DeleteFeed(ctx context.Context, feedID int) error {
	return access.Discard(d.r.Delete(ctx, fmt.Sprintf("downloads/feeds/%d/", feedID), nil))
}

// UpdateFeed toggles automatic download of new feed items.
func (d *Download) UpdateFeed(ctx context.Context, feedID int, autoDownload bool) (*Feed, error) {
	body := map[string]any{"auto_download": autoDownload}
	return access.Decode[*Feed](d.r.Post(ctx, fmt.Sprintf("downloads/feeds/%d/", feedID), body))
}

// FetchFeed refreshes a feed.
func (d *Download) FetchFeed(ctx context.Context, feedID int) error {
	return access.Discard(d.r.Post(ctx, fmt.Sprintf("downloads/feeds/%d/fetch/", feedID), nil))
}

// FetchAllFeeds refreshes every feed.
func (d *Download) FetchAllFeeds(ctx context.Context) error {
	return access.Discard(d.r.Post(ctx, "downloads/feeds/fetch/", nil))
}

// FeedItems lists the items of a feed.
func (d *Download) FeedItems(ctx context.Context, feedID int) ([]FeedItem, error) {
	return access.Decode[[]FeedItem](d.r.Get(ctx, fmt.Sprintf("downloads/feeds/%d/items/", feedID)))
}

// MarkItemRead sets the read flag of a feed item. A nil mark marks the
// item read.
func (d *Download) MarkItemRead(ctx context.Context, feedID int, itemID string, mark *MarkItemAsRead) error {
	body := DefaultMarkItemAsRead()
	if mark != nil {
		body = *mark
	}
	return access.Discard(d.r.Post(ctx, fmt.Sprintf("downloads/feeds/%d/items/%s", feedID, url.PathEscape(itemID)), body))
}

// DownloadFeedItem starts downloading a feed item.
func (d *Download) DownloadFeedItem(ctx context.Context, feedID int, itemID string) error {
	return access.Discard(d.r.Post(ctx, fmt.Sprintf("downloads/feeds/%d/items/%s/download/", feedID, url.PathEscape(itemID)), nil))
}

// MarkFeedRead marks every item of a feed read.
func (d *Download) MarkFeedRead(ctx context.Context, feedID int) error {
	return access.Discard(d.r.Post(ctx, fmt.Sprintf("downloads/feeds/%d/mark_all_as_read/", feedID), nil))
}

// Config returns the download manager configuration.
func (d *Download) Config(ctx context.Context) (map[string]any, error) {
	return access.Decode[map[string]any](d.r.Get(ctx, "downloads/config/"))
}

// SetConfig updates the download manager configuration and returns the
// resulting configuration.
func (d *Download) SetConfig(ctx context.Context, cfg map[string]any) (map[string]any, error) {
	return access.Decode[map[string]any](d.r.Put(ctx, "downloads/config/", cfg))
}

// FetchFile downloads a file stored on the box. path is the absolute
// path on the box disk, e.g. /Disque dur/Téléchargements/file.iso.
func (d *Download) FetchFile(ctx context.Context, path string) ([]byte, error) {
	resp, err := d.r.Raw(ctx, "dl/"+url.PathEscape(EncodePath(path)))
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

// EncodePath encodes a box disk path the way the API expects it in
// download_dir fields and dl/ URLs.
func EncodePath(path string) string {
	return base64.StdEncoding.EncodeToString([]byte(path))
}
