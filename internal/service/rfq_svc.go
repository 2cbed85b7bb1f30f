package service

import (
	"context"
	"fmt"
	"log"

	"github.com/go-resty/resty/v2"

	"ultrasooq_session_v1/internal/api/dto"
	"ultrasooq_session_v1/internal/model"
	"ultrasooq_session_v1/internal/repository"
)

// RfqService 询价单 (RFQ) 购物车服务
// 没有匿名形态：未登录的任何写操作一律返回 ErrLoginRequired，
// 由前端引导先走登录流程再重放操作。
type RfqService struct {
	rfqRepo repository.RfqRepository
	client  *resty.Client
}

// NewRfqService 创建询价单服务
func NewRfqService(rfqRepo repository.RfqRepository, client *resty.Client) *RfqService {
	return &RfqService{rfqRepo: rfqRepo, client: client}
}

// Put 写入询价行
// quantity == 0 按删除处理；乐观更新 + 失败回滚的纪律与零售车一致。
func (s *RfqService) Put(ctx context.Context, owner CartOwner, req dto.RfqLineReq) error {
	if !owner.Authenticated() {
		return ErrLoginRequired
	}

	if req.Quantity == 0 {
		return s.delete(ctx, owner, req.RfqProductID)
	}

	// 1. 记住回滚目标
	var prev *model.RfqCartLine
	if existing, err := s.rfqRepo.GetByUserAndProduct(ctx, owner.UserID, req.RfqProductID); err == nil {
		copied := *existing
		prev = &copied
	}

	// 2. 本地乐观写入
	line := &model.RfqCartLine{
		UserID:       owner.UserID,
		RfqProductID: req.RfqProductID,
		Quantity:     req.Quantity,
	}
	if err := s.rfqRepo.Upsert(ctx, line); err != nil {
		return fmt.Errorf("本地写入失败: %w", err)
	}

	// 3. 远端确认，失败回滚
	if err := s.remotePut(ctx, owner.Token, req); err != nil {
		if prev != nil {
			if rbErr := s.rfqRepo.Upsert(ctx, prev); rbErr != nil {
				log.Printf("[RFQ] 回滚失败: %v", rbErr)
			}
		} else {
			if rbErr := s.rfqRepo.DeleteByUserAndProduct(ctx, owner.UserID, req.RfqProductID); rbErr != nil {
				log.Printf("[RFQ] 回滚失败: %v", rbErr)
			}
		}
		log.Printf("[RFQ] 远端同步失败已回滚: %v", err)
		return ErrCartSync
	}
	return nil
}

// List 列出当前用户的询价行
func (s *RfqService) List(ctx context.Context, owner CartOwner) ([]model.RfqCartLine, error) {
	if !owner.Authenticated() {
		return nil, ErrLoginRequired
	}
	return s.rfqRepo.ListByUser(ctx, owner.UserID)
}

// ClearUser 清空某用户的询价车 (登出时由会话服务调用)
func (s *RfqService) ClearUser(ctx context.Context, userID int64) {
	if err := s.rfqRepo.DeleteByUser(ctx, userID); err != nil {
		log.Printf("[RFQ] 清空询价车失败: %v", err)
	}
}

// delete 删除询价行 (quantity=0 路径)
func (s *RfqService) delete(ctx context.Context, owner CartOwner, rfqProductID int64) error {
	prev, err := s.rfqRepo.GetByUserAndProduct(ctx, owner.UserID, rfqProductID)
	if err != nil {
		// 不存在即幂等成功
		return nil
	}
	backup := *prev

	if err := s.rfqRepo.DeleteByUserAndProduct(ctx, owner.UserID, rfqProductID); err != nil {
		return fmt.Errorf("本地删除失败: %w", err)
	}

	if err := s.remotePut(ctx, owner.Token, dto.RfqLineReq{RfqProductID: rfqProductID, Quantity: 0}); err != nil {
		backup.ID = 0
		if rbErr := s.rfqRepo.Upsert(ctx, &backup); rbErr != nil {
			log.Printf("[RFQ] 回滚失败: %v", rbErr)
		}
		log.Printf("[RFQ] 远端删除失败已回滚: %v", err)
		return ErrCartSync
	}
	return nil
}

// remotePut 远端询价车写入 (quantity=0 即远端删除)
func (s *RfqService) remotePut(ctx context.Context, token string, req dto.RfqLineReq) error {
	var result dto.UpstreamCartResp
	resp, err := s.client.R().
		SetContext(ctx).
		SetResult(&result).
		SetAuthToken(token).
		SetBody(map[string]interface{}{
			"rfqProductId": req.RfqProductID,
			"quantity":     req.Quantity,
		}).
		Post("/cart/rfq/update")
	return checkUpstream(resp, err, &result)
}
