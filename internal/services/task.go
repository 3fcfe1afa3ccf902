package services

import (
	"errors"
	"sort"
	"time"

	"github.com/sydo/sydo-reviews/internal/models"
	"github.com/sydo/sydo-reviews/pkg/response"
	"gorm.io/gorm"
)

// ErrTaskCycle is returned when the stored parent pointers do not form a
// forest. The write guards should make this unreachable; the read side
// still refuses to render rather than loop.
var ErrTaskCycle = errors.New("task hierarchy contains a cycle")

type TaskService struct {
	db *gorm.DB
}

func NewTaskService(db *gorm.DB) *TaskService {
	return &TaskService{db: db}
}

// TaskNode is a task with its subtasks attached, ready for the board view.
type TaskNode struct {
	models.Task
	Subtasks []*TaskNode `json:"subtasks"`
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	RemindAt    *time.Time `json:"remind_at"`
	AssignedTo  []uint     `json:"assigned_to"`
	ParentID    *uint      `json:"parent_id"`
	ProjectID   *uint      `json:"project_id"`
	Position    *int       `json:"position"`
}

type UpdateTaskRequest struct {
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date"`
	RemindAt    *time.Time `json:"remind_at"`
	AssignedTo  []uint     `json:"assigned_to"`
	ParentID    *uint      `json:"parent_id"`
	ClearParent bool       `json:"clear_parent"`
	Position    *int       `json:"position"`
}

type ListTasksRequest struct {
	ProjectID       uint   `form:"project_id"`
	Status          string `form:"status"`
	IncludeArchived bool   `form:"include_archived"`
}

// BuildForest arranges a flat task collection into position-ordered trees.
// A task whose parent is missing from the collection becomes a root. If the
// parent pointers contain a cycle the whole build fails with ErrTaskCycle
// instead of returning a partial forest.
func BuildForest(tasks []models.Task) ([]*TaskNode, error) {
	present := make(map[uint]bool, len(tasks))
	for i := range tasks {
		present[tasks[i].ID] = true
	}

	childrenOf := make(map[uint][]*TaskNode)
	roots := make([]*TaskNode, 0)
	for i := range tasks {
		node := &TaskNode{Task: tasks[i], Subtasks: []*TaskNode{}}
		pid := tasks[i].ParentID
		if pid == nil || !present[*pid] {
			roots = append(roots, node)
		} else {
			childrenOf[*pid] = append(childrenOf[*pid], node)
		}
	}

	byPosition := func(nodes []*TaskNode) {
		sort.SliceStable(nodes, func(i, j int) bool {
			return nodes[i].Position < nodes[j].Position
		})
	}
	byPosition(roots)
	for _, group := range childrenOf {
		byPosition(group)
	}

	visited := make(map[uint]bool, len(tasks))
	var attach func(node *TaskNode) error
	attach = func(node *TaskNode) error {
		if visited[node.ID] {
			return ErrTaskCycle
		}
		visited[node.ID] = true
		if group, ok := childrenOf[node.ID]; ok {
			node.Subtasks = group
		}
		for _, child := range node.Subtasks {
			if err := attach(child); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range roots {
		if err := attach(root); err != nil {
			return nil, err
		}
	}

	// Tasks unreachable from any root sit on a cycle among themselves
	if len(visited) != len(tasks) {
		return nil, ErrTaskCycle
	}
	return roots, nil
}

// List returns the caller's tasks as a flat slice. Archived tasks are
// hidden unless asked for.
func (s *TaskService) List(userID uint, req *ListTasksRequest) ([]models.Task, error) {
	query := s.db.Where("user_id = ?", userID)
	if req.ProjectID > 0 {
		query = query.Where("project_id = ?", req.ProjectID)
	}
	if req.Status != "" {
		query = query.Where("status = ?", req.Status)
	} else if !req.IncludeArchived {
		query = query.Where("status <> ?", models.TaskStatusArchived)
	}

	var tasks []models.Task
	err := query.Order("position ASC, created_at ASC").Find(&tasks).Error
	return tasks, err
}

// Forest returns the caller's tasks arranged as trees.
func (s *TaskService) Forest(userID uint, req *ListTasksRequest) ([]*TaskNode, error) {
	tasks, err := s.List(userID, req)
	if err != nil {
		return nil, err
	}
	return BuildForest(tasks)
}

// Create adds a task, optionally under a parent. Position defaults to the
// end of the sibling group.
func (s *TaskService) Create(req *CreateTaskRequest, userID uint) (*models.Task, error) {
	if req.Status == "" {
		req.Status = models.TaskStatusTodo
	}
	if req.Priority == "" {
		req.Priority = models.TaskPriorityMedium
	}
	if !models.ValidTaskStatus(req.Status) {
		return nil, response.NewBadRequest("unknown task status: " + req.Status)
	}
	if !models.ValidTaskPriority(req.Priority) {
		return nil, response.NewBadRequest("unknown task priority: " + req.Priority)
	}

	if req.ParentID != nil {
		if _, err := s.ownedTask(*req.ParentID, userID); err != nil {
			return nil, response.NewBadRequest("parent task not found")
		}
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		RemindAt:    req.RemindAt,
		ParentID:    req.ParentID,
		ProjectID:   req.ProjectID,
		UserID:      userID,
	}
	if err := task.SetAssigneeIDs(req.AssignedTo); err != nil {
		return nil, err
	}
	if req.Position != nil {
		task.Position = *req.Position
	} else {
		task.Position = s.nextPosition(userID, req.ParentID)
	}

	if err := s.db.Create(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// Update edits a task. Re-parenting is guarded: a task can never become its
// own parent, nor move under one of its descendants.
func (s *TaskService) Update(id uint, req *UpdateTaskRequest, userID uint) (*models.Task, error) {
	task, err := s.ownedTask(id, userID)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Status != "" {
		if !models.ValidTaskStatus(req.Status) {
			return nil, response.NewBadRequest("unknown task status: " + req.Status)
		}
		updates["status"] = req.Status
	}
	if req.Priority != "" {
		if !models.ValidTaskPriority(req.Priority) {
			return nil, response.NewBadRequest("unknown task priority: " + req.Priority)
		}
		updates["priority"] = req.Priority
	}
	if req.DueDate != nil {
		updates["due_date"] = *req.DueDate
	}
	if req.RemindAt != nil {
		updates["remind_at"] = *req.RemindAt
		updates["reminded_at"] = nil
	}
	if req.AssignedTo != nil {
		scratch := models.Task{}
		if err := scratch.SetAssigneeIDs(req.AssignedTo); err != nil {
			return nil, err
		}
		updates["assigned_to"] = scratch.AssignedTo
	}
	if req.Position != nil {
		updates["position"] = *req.Position
	}

	switch {
	case req.ClearParent:
		updates["parent_id"] = nil
	case req.ParentID != nil:
		if err := s.guardReparent(task, *req.ParentID, userID); err != nil {
			return nil, err
		}
		updates["parent_id"] = *req.ParentID
	}

	if len(updates) > 0 {
		if err := s.db.Model(task).Updates(updates).Error; err != nil {
			return nil, err
		}
	}
	s.db.First(task, task.ID)
	return task, nil
}

// Archive moves a task to the archived status without deleting it.
func (s *TaskService) Archive(id, userID uint) (*models.Task, error) {
	return s.Update(id, &UpdateTaskRequest{Status: models.TaskStatusArchived}, userID)
}

// Reorder moves a task inside or across sibling groups in one call.
func (s *TaskService) Reorder(id uint, parentID *uint, clearParent bool, position int, userID uint) (*models.Task, error) {
	return s.Update(id, &UpdateTaskRequest{ParentID: parentID, ClearParent: clearParent, Position: &position}, userID)
}

// Delete removes a task. Its direct subtasks are promoted to the deleted
// task's parent so no row is left pointing at a gone task.
func (s *TaskService) Delete(id, userID uint) error {
	task, err := s.ownedTask(id, userID)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		var newParent interface{}
		if task.ParentID != nil {
			newParent = *task.ParentID
		}
		if err := tx.Model(&models.Task{}).Where("parent_id = ?", task.ID).Update("parent_id", newParent).Error; err != nil {
			return err
		}
		return tx.Delete(task).Error
	})
}

// guardReparent rejects self-parenting and any move that would put the
// task under its own subtree. The walk up from the candidate parent carries
// a visited set so a corrupt chain terminates instead of looping.
func (s *TaskService) guardReparent(task *models.Task, newParentID uint, userID uint) error {
	if newParentID == task.ID {
		return response.NewUnprocessable("a task cannot be its own parent")
	}
	parent, err := s.ownedTask(newParentID, userID)
	if err != nil {
		return response.NewBadRequest("parent task not found")
	}

	seen := map[uint]bool{}
	for current := parent; current.ParentID != nil; {
		pid := *current.ParentID
		if pid == task.ID {
			return response.NewUnprocessable("a task cannot move under its own subtask")
		}
		if seen[pid] {
			break
		}
		seen[pid] = true
		next, err := s.ownedTask(pid, userID)
		if err != nil {
			break
		}
		current = next
	}
	return nil
}

func (s *TaskService) ownedTask(id, userID uint) (*models.Task, error) {
	var task models.Task
	if err := s.db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error; err != nil {
		return nil, response.NewNotFound("task not found")
	}
	return &task, nil
}

func (s *TaskService) nextPosition(userID uint, parentID *uint) int {
	query := s.db.Model(&models.Task{}).Where("user_id = ?", userID)
	if parentID != nil {
		query = query.Where("parent_id = ?", *parentID)
	} else {
		query = query.Where("parent_id IS NULL")
	}
	var max *int
	query.Select("MAX(position)").Scan(&max)
	if max == nil {
		return 0
	}
	return *max + 1
}
