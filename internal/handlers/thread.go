package handlers

import (
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"burrow/internal/db"
	"burrow/internal/middleware"
	"burrow/internal/models"
	"burrow/internal/services"
	"burrow/internal/utils"

	"github.com/gin-gonic/gin"
)

type ThreadHandler struct {
	threads  *services.ThreadService
	comments *services.CommentService
	feed     *services.FeedService
	votes    *services.VoteService
}

func NewThreadHandler(uploader services.Uploader) *ThreadHandler {
	return &ThreadHandler{
		threads:  services.NewThreadService(db.DB, uploader),
		comments: services.NewCommentService(db.DB, uploader),
		feed:     services.NewFeedService(db.DB),
		votes:    services.NewVoteService(db.DB),
	}
}

// renderedComment pairs a comment node with its markdown-rendered body for
// the templates. Replies are flattened one level deep per node.
type renderedComment struct {
	*services.CommentNode
	ContentHTML template.HTML
	MyVote      int
	LoggedIn    bool
	CanDelete   bool
	Replies     []*renderedComment
}

func (h *ThreadHandler) renderTree(nodes []*services.CommentNode, myVotes map[uint]int, viewer *models.User) []*renderedComment {
	out := make([]*renderedComment, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, &renderedComment{
			CommentNode: n,
			ContentHTML: utils.RenderMarkdown(n.Content),
			MyVote:      myVotes[n.ID],
			LoggedIn:    viewer != nil,
			CanDelete:   viewer != nil && (viewer.IsAdmin || viewer.ID == n.UserID),
			Replies:     h.renderTree(n.Replies, myVotes, viewer),
		})
	}
	return out
}

// List is the main feed, sortable via ?sort=new|top|discussed.
func (h *ThreadHandler) List(c *gin.Context) {
	page := utils.StringToInt(c.DefaultQuery("page", "1"))
	sort := c.DefaultQuery("sort", services.SortNew)

	// Anonymous page 1 of each sort is the hot path; only that page is
	// cached, so invalidateFeed can drop every cached key.
	cacheKey := fmt.Sprintf("feed:%s:page:1", sort)
	cacheable := page <= 1 && middleware.CurrentUser(c) == nil
	if cacheable {
		if cached := utils.GetCache().Get(cacheKey); cached != nil {
			if hData, ok := cached.(gin.H); ok {
				Render(c, http.StatusOK, "thread/list.html", hData)
				return
			}
		}
	}

	feedPage, err := h.feed.Threads(page, services.DefaultPerPage, sort)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load the feed")
		return
	}

	renderData := gin.H{
		"Threads":     feedPage.Threads,
		"CurrentPage": feedPage.Page,
		"TotalPages":  feedPage.TotalPages,
		"Sort":        feedPage.Sort,
		"Title":       "Burrow",
	}

	if cacheable {
		utils.GetCache().Set(cacheKey, renderData, 1*time.Minute)
	}
	Render(c, http.StatusOK, "thread/list.html", renderData)
}

// Detail shows one thread with its comment tree.
func (h *ThreadHandler) Detail(c *gin.Context) {
	threadID := utils.StringToUint(c.Param("id"))

	thread, err := h.threads.Get(threadID)
	if err != nil {
		RenderError(c, http.StatusNotFound, "Thread not found")
		return
	}

	tree, err := h.comments.Tree(threadID)
	if err != nil {
		RenderError(c, http.StatusInternalServerError, "Could not load comments")
		return
	}

	viewer := middleware.CurrentUser(c)
	myVote := 0
	myCommentVotes := map[uint]int{}
	if viewer != nil {
		myVote = h.votes.MyThreadVote(threadID, viewer.ID)
		myCommentVotes = h.votes.MyCommentVotes(collectIDs(tree), viewer.ID)
	}

	Render(c, http.StatusOK, "thread/detail.html", gin.H{
		"Thread":        thread,
		"ThreadContent": utils.RenderMarkdown(thread.Content),
		"Comments":      h.renderTree(tree, myCommentVotes, viewer),
		"MyVote":        myVote,
		"Title":         thread.Title,
	})
}

func collectIDs(nodes []*services.CommentNode) []uint {
	var ids []uint
	for _, n := range nodes {
		ids = append(ids, n.ID)
		ids = append(ids, collectIDs(n.Replies)...)
	}
	return ids
}

func (h *ThreadHandler) ShowCreate(c *gin.Context) {
	Render(c, http.StatusOK, "thread/create.html", gin.H{"Title": "New thread"})
}

func (h *ThreadHandler) Create(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)

	title := c.PostForm("title")
	content := c.PostForm("content")
	image, _ := c.FormFile("image")

	thread, err := h.threads.Create(user.ID, title, content, image)
	if err != nil {
		Render(c, http.StatusBadRequest, "thread/create.html", gin.H{
			"Error": createThreadMessage(err),
			"Form":  gin.H{"Title": title, "Content": content},
		})
		return
	}

	invalidateFeed()
	c.Redirect(http.StatusFound, fmt.Sprintf("/t/%d", thread.ID))
}

func createThreadMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrEmptyContent):
		return "The thread body cannot be empty"
	case errors.Is(err, services.ErrTitleTooLong):
		return "The title is too long (100 characters max)"
	case errors.Is(err, services.ErrContentTooLong):
		return "The body is too long (2000 characters max)"
	case errors.Is(err, services.ErrRateLimited):
		return "You are posting too fast, wait a minute"
	case errors.Is(err, services.ErrBadImageType):
		return "Only JPEG, PNG, GIF and WebP images are allowed"
	case errors.Is(err, services.ErrImageTooLarge):
		return "The image is too large (10MB max)"
	case errors.Is(err, services.ErrUploadFailed):
		return "Image upload failed, try again later"
	default:
		return "Could not create the thread"
	}
}

func (h *ThreadHandler) Delete(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	threadID := utils.StringToUint(c.Param("id"))

	err := h.threads.Delete(threadID, user.ID, user.IsAdmin)
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.Status(http.StatusNotFound)
		return
	case errors.Is(err, services.ErrForbidden):
		c.Status(http.StatusForbidden)
		return
	case err != nil:
		c.Status(http.StatusInternalServerError)
		return
	}

	invalidateFeed()
	c.Redirect(http.StatusFound, "/")
}

// CreateComment posts a comment or a nested reply.
func (h *ThreadHandler) CreateComment(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	threadID := utils.StringToUint(c.Param("id"))

	content := c.PostForm("content")
	image, _ := c.FormFile("image")

	var parentID, replyToUserID *uint
	if raw := c.PostForm("parent_id"); raw != "" {
		id := utils.StringToUint(raw)
		parentID = &id
	}
	if raw := c.PostForm("reply_to_user_id"); raw != "" {
		id := utils.StringToUint(raw)
		replyToUserID = &id
	}

	_, err := h.comments.Create(threadID, user.ID, content, parentID, replyToUserID, image)
	if err != nil {
		RenderError(c, commentFailureStatus(err), commentFailureMessage(err))
		return
	}

	// Comment counts feed the "discussed" sort.
	invalidateFeed()
	c.Redirect(http.StatusFound, fmt.Sprintf("/t/%d", threadID))
}

func commentFailureStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrUploadFailed):
		return http.StatusBadGateway
	default:
		return http.StatusBadRequest
	}
}

func commentFailureMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrEmptyContent):
		return "The comment cannot be empty"
	case errors.Is(err, services.ErrNotFound):
		return "Thread not found"
	case errors.Is(err, services.ErrParentNotFound):
		return "The comment you are replying to no longer exists"
	case errors.Is(err, services.ErrParentMismatch):
		return "The comment you are replying to belongs to another thread"
	case errors.Is(err, services.ErrReplyTargetNotFound):
		return "The user you are replying to no longer exists"
	case errors.Is(err, services.ErrBadImageType):
		return "Only JPEG, PNG, GIF and WebP images are allowed"
	case errors.Is(err, services.ErrImageTooLarge):
		return "The image is too large (10MB max)"
	case errors.Is(err, services.ErrUploadFailed):
		return "Image upload failed, try again later"
	default:
		return "Could not post the comment"
	}
}

func (h *ThreadHandler) DeleteComment(c *gin.Context) {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	threadID := utils.StringToUint(c.Param("id"))
	commentID := utils.StringToUint(c.Param("cid"))

	err := h.comments.Delete(threadID, commentID, user.ID, user.IsAdmin)
	switch {
	case errors.Is(err, services.ErrNotFound):
		c.Status(http.StatusNotFound)
		return
	case errors.Is(err, services.ErrForbidden):
		c.Status(http.StatusForbidden)
		return
	case err != nil:
		c.Status(http.StatusInternalServerError)
		return
	}

	invalidateFeed()
	c.Redirect(http.StatusFound, fmt.Sprintf("/t/%d", threadID))
}

// invalidateFeed drops every cached feed page (only page 1 of each sort is
// ever cached) after a mutation that changes what the feed shows.
func invalidateFeed() {
	for _, sort := range []string{services.SortNew, services.SortTop, services.SortDiscussed} {
		utils.GetCache().Delete(fmt.Sprintf("feed:%s:page:1", sort))
	}
}
