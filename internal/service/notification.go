package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aazukvid2000/Pyxolotl/internal/client"
	"github.com/Aazukvid2000/Pyxolotl/internal/model"
	"github.com/rs/zerolog"
)

const (
	mailSubjectVerification  = "Verifica tu cuenta - Pyxolotl"
	mailSubjectPasswordReset = "Recupera tu contraseña - Pyxolotl"
	mailSubjectPurchase      = "Confirmación de compra - Pyxolotl"
	mailSubjectGameApproved  = "Tu juego ha sido aprobado - Pyxolotl"
	mailSubjectGameRejected  = "Tu juego necesita cambios - Pyxolotl"
)

// NotificationService sends transactional mail. Every send is best effort,
// failures are logged and never bubble up into the calling flow.
type NotificationService interface {
	SendVerificationMail(ctx context.Context, toEmail, name, token string)
	SendPasswordResetMail(ctx context.Context, toEmail, name, token string)
	SendPurchaseConfirmation(ctx context.Context, toEmail, name, orderNumber string, games []*model.Game, total float64)
	SendGameApproved(ctx context.Context, toEmail, name, gameTitle string)
	SendGameRejected(ctx context.Context, toEmail, name, gameTitle, reason string)
}

type notificationServiceImpl struct {
	mailClient  client.MailClient
	frontendURL string
	logger      zerolog.Logger
}

func NewNotificationService(
	mailClient client.MailClient,
	frontendURL string,
	logger zerolog.Logger,
) NotificationService {
	return &notificationServiceImpl{
		mailClient:  mailClient,
		frontendURL: frontendURL,
		logger:      logger,
	}
}

func (s *notificationServiceImpl) send(ctx context.Context, toEmail, subject, html string) {
	if err := s.mailClient.Send(ctx, toEmail, subject, html); err != nil {
		s.logger.Error().Err(err).
			Str("to", toEmail).
			Str("subject", subject).
			Msg("could not send mail")
	}
}

func (s *notificationServiceImpl) SendVerificationMail(ctx context.Context, toEmail, name, token string) {
	verifyURL := fmt.Sprintf("%s/verificar?token=%s", s.frontendURL, token)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(90deg, #4ea3ff, #7b61ff); padding: 20px; text-align: center; color: white; border-radius: 10px 10px 0 0; }
  .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
  .button { display: inline-block; padding: 12px 24px; background: linear-gradient(90deg, #4ea3ff, #7b61ff); color: white; text-decoration: none; border-radius: 8px; margin: 20px 0; }
  .footer { text-align: center; color: #666; font-size: 12px; margin-top: 20px; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h1>🎮 Bienvenido a Pyxolotl</h1></div>
  <div class="content">
    <h2>¡Hola %s!</h2>
    <p>Gracias por registrarte en Pyxolotl, la plataforma para desarrolladores indie mexicanos.</p>
    <p>Para activar tu cuenta, por favor verifica tu correo electrónico haciendo clic en el siguiente botón:</p>
    <div style="text-align: center;"><a href="%s" class="button">Verificar mi cuenta</a></div>
    <p>O copia y pega este enlace en tu navegador:</p>
    <p style="background: #fff; padding: 10px; border-radius: 5px; word-break: break-all;">%s</p>
    <p>Este enlace expirará en 24 horas.</p>
    <p>Si no creaste esta cuenta, puedes ignorar este mensaje.</p>
  </div>
  <div class="footer">
    <p>© 2025 Pyxolotl - Plataforma de Videojuegos Indie</p>
    <p>Este es un correo automático, por favor no respondas.</p>
  </div>
</div>
</body>
</html>`, name, verifyURL, verifyURL)

	s.send(ctx, toEmail, mailSubjectVerification, html)
}

func (s *notificationServiceImpl) SendPasswordResetMail(ctx context.Context, toEmail, name, token string) {
	resetURL := fmt.Sprintf("%s/resetear-password?token=%s", s.frontendURL, token)

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
<div style="max-width: 600px; margin: 0 auto; background: #f9f9f9; padding: 30px; border-radius: 10px;">
  <h1 style="color: #7b61ff;">Recuperación de contraseña</h1>
  <p>Hola %s,</p>
  <p>Recibimos una solicitud para restablecer tu contraseña. Haz clic en el siguiente enlace para elegir una nueva:</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="%s" style="display: inline-block; padding: 12px 24px; background: linear-gradient(90deg, #4ea3ff, #7b61ff); color: white; text-decoration: none; border-radius: 8px;">Restablecer contraseña</a>
  </div>
  <p>Este enlace expirará en 1 hora.</p>
  <p>Si no solicitaste este cambio, puedes ignorar este mensaje.</p>
  <p style="color: #666; font-size: 12px; margin-top: 30px;">- El equipo de Pyxolotl</p>
</div>
</body>
</html>`, name, resetURL)

	s.send(ctx, toEmail, mailSubjectPasswordReset, html)
}

func (s *notificationServiceImpl) SendPurchaseConfirmation(ctx context.Context, toEmail, name, orderNumber string, games []*model.Game, total float64) {
	libraryURL := s.frontendURL + "/biblioteca"

	var items strings.Builder
	for _, g := range games {
		items.WriteString(fmt.Sprintf(`<div style="background: white; padding: 15px; margin: 10px 0; border-radius: 8px; border-left: 4px solid #7b61ff;">
  <h3 style="margin: 0 0 10px 0;">🎮 %s</h3>
  <p style="margin: 5px 0;">Precio: $%.2f USD</p>
  <a href="%s" style="color: #7b61ff; text-decoration: none;">📥 Ir a mi biblioteca →</a>
</div>`, g.Title, g.Price, libraryURL))
	}

	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
<style>
  body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
  .container { max-width: 600px; margin: 0 auto; padding: 20px; }
  .header { background: linear-gradient(90deg, #4ea3ff, #7b61ff); padding: 20px; text-align: center; color: white; border-radius: 10px 10px 0 0; }
  .content { background: #f9f9f9; padding: 30px; border-radius: 0 0 10px 10px; }
  .button { display: inline-block; padding: 12px 24px; background: linear-gradient(90deg, #4ea3ff, #7b61ff); color: white; text-decoration: none; border-radius: 8px; margin: 20px 0; }
</style>
</head>
<body>
<div class="container">
  <div class="header"><h1>✅ ¡Compra Confirmada!</h1></div>
  <div class="content">
    <h2>¡Gracias por tu compra, %s!</h2>
    <p><strong>Número de orden:</strong> %s</p>
    <p><strong>Total pagado:</strong> $%.2f USD</p>
    <h3>Tus juegos:</h3>
    %s
    <div style="text-align: center; margin-top: 30px;">
      <a href="%s" class="button">Ir a mi biblioteca</a>
    </div>
    <p style="margin-top: 20px;">Puedes descargar tus juegos en cualquier momento desde tu biblioteca.</p>
  </div>
  <div style="text-align: center; color: #666; font-size: 12px; margin-top: 20px;">
    <p>© 2025 Pyxolotl - Plataforma de Videojuegos Indie</p>
  </div>
</div>
</body>
</html>`, name, orderNumber, total, items.String(), libraryURL)

	s.send(ctx, toEmail, mailSubjectPurchase, html)
}

func (s *notificationServiceImpl) SendGameApproved(ctx context.Context, toEmail, name, gameTitle string) {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
<div style="max-width: 600px; margin: 0 auto; background: #f9f9f9; padding: 30px; border-radius: 10px;">
  <h1 style="color: #4CAF50;">🎉 ¡Tu juego ha sido aprobado!</h1>
  <p>Hola %s,</p>
  <p>Tenemos excelentes noticias: tu juego <strong>"%s"</strong> ha sido revisado y aprobado.</p>
  <p>Ya está visible en el catálogo público de Pyxolotl y los usuarios pueden comprarlo.</p>
  <div style="text-align: center; margin: 30px 0;">
    <a href="%s/" style="display: inline-block; padding: 12px 24px; background: #4CAF50; color: white; text-decoration: none; border-radius: 8px;">Ver en catálogo</a>
  </div>
  <p>¡Mucha suerte con las ventas!</p>
  <p style="color: #666; font-size: 12px; margin-top: 30px;">- El equipo de Pyxolotl</p>
</div>
</body>
</html>`, name, gameTitle, s.frontendURL)

	s.send(ctx, toEmail, mailSubjectGameApproved, html)
}

func (s *notificationServiceImpl) SendGameRejected(ctx context.Context, toEmail, name, gameTitle, reason string) {
	html := fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; padding: 20px;">
<div style="max-width: 600px; margin: 0 auto; background: #f9f9f9; padding: 30px; border-radius: 10px;">
  <h1 style="color: #ff6b6b;">Tu juego necesita cambios</h1>
  <p>Hola %s,</p>
  <p>Hemos revisado tu juego <strong>"%s"</strong> y necesita algunos ajustes antes de ser publicado:</p>
  <div style="background: white; padding: 15px; margin: 20px 0; border-left: 4px solid #ff6b6b; border-radius: 5px;">
    <p><strong>Motivo:</strong></p>
    <p>%s</p>
  </div>
  <p>Por favor realiza los cambios necesarios y vuelve a enviar tu juego para revisión.</p>
  <p>Si tienes dudas, no dudes en contactarnos.</p>
  <p style="color: #666; font-size: 12px; margin-top: 30px;">- El equipo de Pyxolotl</p>
</div>
</body>
</html>`, name, gameTitle, reason)

	s.send(ctx, toEmail, mailSubjectGameRejected, html)
}
