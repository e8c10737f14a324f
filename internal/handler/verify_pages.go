package handler

import (
	"fmt"
	"html"
)

// The verification pages are served straight from the API because the link
// inside the email has to work even when the frontend is not open.
const verifyPageTemplate = `<!DOCTYPE html>
<html lang="es">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>%s</title>
    <style>
        * {
            margin: 0;
            padding: 0;
            box-sizing: border-box;
        }

        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, 'Helvetica Neue', Arial, sans-serif;
            background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%);
            min-height: 100vh;
            display: flex;
            justify-content: center;
            align-items: center;
            padding: 20px;
        }

        .container {
            background: white;
            border-radius: 20px;
            padding: 60px 40px;
            box-shadow: 0 20px 60px rgba(0, 0, 0, 0.3);
            max-width: 500px;
            width: 100%%;
            text-align: center;
            animation: slideUp 0.5s ease;
        }

        @keyframes slideUp {
            from {
                opacity: 0;
                transform: translateY(30px);
            }
            to {
                opacity: 1;
                transform: translateY(0);
            }
        }

        .icon {
            font-size: 100px;
            margin-bottom: 24px;
        }

        @keyframes bounce {
            0%%, 100%% { transform: translateY(0); }
            50%% { transform: translateY(-15px); }
        }

        h1 {
            font-size: 36px;
            color: #333;
            margin-bottom: 16px;
            font-weight: 700;
        }

        p {
            font-size: 18px;
            color: #666;
            margin-bottom: 32px;
            line-height: 1.6;
        }

        .highlight {
            color: #667eea;
            font-weight: 600;
        }

        .btn {
            display: inline-block;
            background: linear-gradient(135deg, #667eea 0%%, #764ba2 100%%);
            color: white;
            text-decoration: none;
            padding: 18px 48px;
            border-radius: 50px;
            font-size: 18px;
            font-weight: 600;
            transition: all 0.3s ease;
            box-shadow: 0 4px 15px rgba(102, 126, 234, 0.4);
        }

        .btn:hover {
            transform: translateY(-3px);
            box-shadow: 0 8px 25px rgba(102, 126, 234, 0.6);
        }
    </style>
</head>
<body>
    <div class="container">
        <div class="icon"%s>%s</div>
        <h1>%s</h1>
        <p>%s</p>
        <a href="%s/inicio.html" class="btn">%s</a>
    </div>
</body>
</html>
`

func verifySuccessPage(frontendURL, userName string) string {
	body := fmt.Sprintf(`¡Bienvenido <span class="highlight">%s</span>!<br>
            Tu cuenta ha sido verificada exitosamente.<br>
            Ya puedes iniciar sesión y comenzar a explorar.`, html.EscapeString(userName))

	return fmt.Sprintf(verifyPageTemplate,
		"✅ Verificación Exitosa - Pyxolotl",
		` style="animation: bounce 1s ease infinite"`,
		"🎉",
		"¡Cuenta Verificada!",
		body,
		frontendURL,
		"Iniciar Sesión",
	)
}

func verifyAlreadyPage(frontendURL string) string {
	return fmt.Sprintf(verifyPageTemplate,
		"✅ Cuenta Verificada - Pyxolotl",
		"",
		"✅",
		"Cuenta Ya Verificada",
		`Tu cuenta ya estaba verificada anteriormente.<br>
            Puedes iniciar sesión normalmente.`,
		frontendURL,
		"Iniciar Sesión",
	)
}

func verifyErrorPage(frontendURL, message string) string {
	return fmt.Sprintf(verifyPageTemplate,
		"❌ Error de Verificación - Pyxolotl",
		` style="color: #f44336"`,
		"⚠️",
		"Error de Verificación",
		html.EscapeString(message),
		frontendURL,
		"Regresar al Inicio",
	)
}
