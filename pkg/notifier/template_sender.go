// pkg/notifier/template_sender.go
package notifier

import (
	"errors"
	"sync"

	"NotifyHub/pkg/errno"
	"NotifyHub/pkg/model"

	"gorm.io/gorm"
)

// TemplateSender 模板发送器。
// 解析模板和目标受众，再逐个调用Dispatcher创建通知。
type TemplateSender struct {
	templates  TemplateStore
	dispatcher *Dispatcher
}

// NewTemplateSender 创建模板发送器
func NewTemplateSender(templates TemplateStore, dispatcher *Dispatcher) *TemplateSender {
	return &TemplateSender{
		templates:  templates,
		dispatcher: dispatcher,
	}
}

// SendTargets 模板发送目标：显式用户列表或整个租户
type SendTargets struct {
	UserIDs    []string `json:"user_ids"`
	CustomerID string   `json:"customer_id"`
}

// SendUsingTemplate 按模板发送站内通知。
// 仅限邮件的模板不能走这条路径，发送时校验而不是建模板时校验。
// 给customerID时只调一次Create，租户内的分发在Create里完成；
// 给用户列表时去重后并行逐个Create，单个失败汇总报错，
// 已成功的创建不回滚（每条都是独立事务）。
// 返回原样的模板作为应答。
func (s *TemplateSender) SendUsingTemplate(templateID string, targets SendTargets) (*model.Template, error) {
	template, err := s.templates.GetActive(templateID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrNotFound.WithMessage("template not found")
		}
		return nil, err
	}

	if template.IsEmailOnly() {
		return nil, errno.ErrForbidden.WithMessage("email-only template cannot be used for in-app send")
	}

	if targets.CustomerID != "" {
		_, err := s.dispatcher.Create(CreateRequest{
			CustomerID: targets.CustomerID,
			Title:      template.Title,
			Message:    template.Message,
			Types:      model.TypeList{model.TypeInApp},
			Channel:    template.Channel,
			TemplateID: template.ID,
			CreatedBy:  "template_send",
		})
		if err != nil {
			return nil, err
		}
		return template, nil
	}

	userIDs := dedup(targets.UserIDs)
	if len(userIDs) == 0 {
		return nil, errno.ErrConflict.WithMessage("notification must be associated with a user or a customer")
	}

	// 并行逐个用户创建
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)
	for _, userID := range userIDs {
		wg.Add(1)
		go func(userID string) {
			defer wg.Done()
			_, err := s.dispatcher.Create(CreateRequest{
				UserID:     userID,
				Title:      template.Title,
				Message:    template.Message,
				Types:      model.TypeList{model.TypeInApp},
				Channel:    template.Channel,
				TemplateID: template.ID,
				CreatedBy:  "template_send",
			})
			if err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}(userID)
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return template, nil
}

func dedup(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
